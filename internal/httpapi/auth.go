package httpapi

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// AccountHeader - заголовок, в который шлюз аутентификации кладет id аккаунта.
const AccountHeader = "X-Account-ID"

var ErrUnauthenticated = errors.New("authentication required")

// Authenticator определяет, от чьего имени выполняется запрос.
// Проверка учетных данных - забота внешнего сервиса.
type Authenticator interface {
	Authenticate(r *http.Request) (accountID string, err error)
}

// HeaderAuthenticator доверяет заголовку X-Account-ID.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(AccountHeader))
	if id == "" {
		return "", ErrUnauthenticated
	}
	return id, nil
}

// actor возвращает id вызывающего или пишет 401.
func (s *Server) actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := s.auth.Authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{Kind: "UNAUTHENTICATED", Message: err.Error()}})
		return "", false
	}
	return id, true
}
