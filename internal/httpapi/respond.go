package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/UkralStul/socialgraph/internal/domain"
	"go.uber.org/zap"
)

type errorDetail struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindInvalidInput, domain.KindInvalidOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError переводит ошибку в HTTP-ответ. Детали внутренних отказов остаются в логе.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, statusOf(kind), errorBody{Error: errorDetail{Kind: kind, Message: domain.MessageOf(err)}})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.InvalidInput("malformed request body")
	}
	return nil
}

// pageRequest читает page, limit и cursor. Нечисловые page и limit означают значения по умолчанию.
func pageRequest(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	req := domain.PageRequest{}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("cursor"); raw != "" {
		cursor, err := domain.DecodeCursor(raw)
		if err != nil {
			return domain.PageRequest{}, err
		}
		req.Cursor = cursor
	}
	return req, nil
}
