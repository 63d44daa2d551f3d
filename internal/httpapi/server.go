// Package httpapi - REST и websocket транспорт поверх сервисов.
package httpapi

import (
	"net/http"
	"time"

	"github.com/UkralStul/socialgraph/internal/dataloader"
	"github.com/UkralStul/socialgraph/internal/realtime"
	"github.com/UkralStul/socialgraph/internal/service"
	"github.com/UkralStul/socialgraph/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultPingInterval = 10 * time.Second

type Options struct {
	Services *service.Services
	// Accounts нужен лоадеру авторов.
	Accounts storage.IdentityStore
	Hub      *realtime.Hub
	Auth     Authenticator
	Logger   *zap.Logger
	// PingInterval - период ping для живых websocket-подписок.
	PingInterval time.Duration
}

// Server держит зависимости обработчиков.
type Server struct {
	svc          *service.Services
	accounts     storage.IdentityStore
	hub          *realtime.Hub
	auth         Authenticator
	log          *zap.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Auth == nil {
		opts.Auth = HeaderAuthenticator{}
	}
	if opts.Hub == nil {
		opts.Hub = realtime.NewHub(0, opts.Logger)
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	return &Server{
		svc:      opts.Services,
		accounts: opts.Accounts,
		hub:      opts.Hub,
		auth:     opts.Auth,
		log:      opts.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pingInterval: opts.PingInterval,
	}
}

// Routes собирает роутер со всеми эндпоинтами.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(s.log))
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return dataloader.Middleware(s.accounts, next)
		})

		r.Get("/health", s.health)

		// === Accounts ===
		r.Post("/accounts", s.register)
		r.Get("/users", s.listAccounts)
		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", s.profile)
			r.Post("/follow", s.toggleFollow)
			r.Put("/follow", s.setFollowing)
			r.Get("/followers", s.followers)
			r.Get("/following", s.following)
			r.Get("/feed", s.feed)
			r.Get("/feed/live", s.liveFeed)
			r.Get("/suggestions", s.suggestions)
		})

		// === Posts ===
		r.Post("/posts", s.createPost)
		r.Get("/posts", s.globalFeed)
		r.Get("/posts/user/{userId}", s.userPosts)
		r.Get("/posts/search/{query}", s.search)
		r.Route("/posts/{id}", func(r chi.Router) {
			r.Get("/", s.getPost)
			r.Delete("/", s.deletePost)
			r.Post("/like", s.toggleLike)
			r.Put("/like", s.setLiked)
			r.Post("/comment", s.addComment)
			r.Get("/comments/live", s.liveComments)
		})
	})

	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger пишет по строке на запрос, как middleware.Logger, но в zap.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
