package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-llamachat/internal/middleware"
	"github.com/iyunix/go-llamachat/internal/ratelimit"
	"github.com/iyunix/go-llamachat/internal/services"
)

// Limiters holds one limiter per route group. A nil limiter disables limiting
// for that group.
type Limiters struct {
	Chat     *ratelimit.MemoryRateLimiter
	Messages *ratelimit.MemoryRateLimiter
	Threads  *ratelimit.MemoryRateLimiter
	Login    *ratelimit.MemoryRateLimiter
	Register *ratelimit.MemoryRateLimiter
}

// DefaultLimiters returns the production quotas.
func DefaultLimiters() *Limiters {
	return &Limiters{
		Chat:     ratelimit.NewMemoryRateLimiter(ratelimit.PerMinute(10)),
		Messages: ratelimit.NewMemoryRateLimiter(ratelimit.PerMinute(30)),
		Threads:  ratelimit.NewMemoryRateLimiter(ratelimit.PerHour(50)),
		Login:    ratelimit.NewMemoryRateLimiter(ratelimit.PerHour(50)),
		Register: ratelimit.NewMemoryRateLimiter(ratelimit.PerHour(10)),
	}
}

// Close stops every limiter's cleanup loop.
func (l *Limiters) Close() {
	for _, rl := range []*ratelimit.MemoryRateLimiter{l.Chat, l.Messages, l.Threads, l.Login, l.Register} {
		if rl != nil {
			rl.Close()
		}
	}
}

type RouterConfig struct {
	Auth           *AuthHandler
	Threads        *ThreadHandler
	Chat           *ChatHandler
	Health         *HealthHandler
	Tokens         middleware.TokenValidator
	Limiters       *Limiters
	AllowedOrigins []string
	Logger         services.Logger
}

// NewRouter wires every route. The returned handler applies panic recovery,
// request logging and CORS before routing.
func NewRouter(cfg RouterConfig) http.Handler {
	limiters := cfg.Limiters
	if limiters == nil {
		limiters = &Limiters{}
	}
	limit := func(rl *ratelimit.MemoryRateLimiter, name string, h http.HandlerFunc) http.Handler {
		if rl == nil {
			return h
		}
		return middleware.RateLimitMiddleware(rl, name, cfg.Logger)(h)
	}
	requireAuth := middleware.NewJWTMiddleware(cfg.Tokens, cfg.Logger)

	r := mux.NewRouter()

	r.HandleFunc("/health", cfg.Health.Health).Methods(http.MethodGet)

	accounts := r.PathPrefix("/accounts").Subrouter()
	accounts.Handle("/register", limit(limiters.Register, "register", cfg.Auth.Register)).Methods(http.MethodPost)
	accounts.Handle("/login", limit(limiters.Login, "login", cfg.Auth.Login)).Methods(http.MethodPost)
	accounts.HandleFunc("/logout", cfg.Auth.Logout).Methods(http.MethodPost)
	accounts.HandleFunc("/status", cfg.Auth.Status).Methods(http.MethodGet)
	accounts.Handle("/delete", requireAuth(http.HandlerFunc(cfg.Auth.DeleteAccount))).Methods(http.MethodDelete)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(requireAuth)

	api.Handle("/threads", limit(limiters.Threads, "threads", cfg.Threads.List)).Methods(http.MethodGet)
	api.Handle("/threads", limit(limiters.Threads, "threads", cfg.Threads.Create)).Methods(http.MethodPost)
	api.Handle("/threads", limit(limiters.Threads, "threads", cfg.Threads.DeleteAll)).Methods(http.MethodDelete)
	api.Handle("/threads/{id}", limit(limiters.Threads, "threads", cfg.Threads.Delete)).Methods(http.MethodDelete)
	api.Handle("/threads/{id}/title", limit(limiters.Threads, "threads", cfg.Threads.Rename)).Methods(http.MethodPut)
	api.Handle("/threads/{id}/messages", limit(limiters.Messages, "messages", cfg.Threads.Messages)).Methods(http.MethodGet)
	api.Handle("/threads/{id}/response", limit(limiters.Chat, "chat", cfg.Chat.GetResponse)).Methods(http.MethodPost)
	api.Handle("/threads/{id}/stream", limit(limiters.Chat, "chat", cfg.Chat.StreamResponse)).Methods(http.MethodPost)
	api.HandleFunc("/streams/{stream_id}/cancel", cfg.Chat.CancelStream).Methods(http.MethodPost)

	var h http.Handler = r
	h = middleware.CORS(cfg.AllowedOrigins)(h)
	h = middleware.LoggingMiddleware(cfg.Logger)(h)
	h = middleware.RecoverPanic(cfg.Logger)(h)
	return h
}
