package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mmuslimabdulj/calcvault/internal/metrics"
	"github.com/mmuslimabdulj/calcvault/internal/middleware"
)

// Limiters are the per-address budgets applied to sensitive routes
type Limiters struct {
	Auth *middleware.IPRateLimiter
	API  *middleware.IPRateLimiter
}

// NewRouter builds the full route table. Everything past the calculator
// answers 404 until the vault is unlocked.
func NewRouter(h *Handler, lim Limiters) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.SecurityHeaders)

	r.Get("/", h.HandlePage)
	r.With(middleware.RateLimit(lim.API)).Post("/api/calculator/press", h.HandlePress)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUnlocked(h.calc))

		r.Get("/api/state", h.HandleState)
		r.Route("/api/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(lim.Auth)).Post("/register", h.HandleRegister)
			r.With(middleware.RateLimit(lim.Auth)).Post("/login", h.HandleLogin)
			r.Post("/logout", h.HandleLogout)
		})
		r.Put("/api/profile", h.HandleUpdateProfile)
		r.Get("/api/chats", h.HandleChats)
		r.Get("/api/conversations/{target}", h.HandleConversation)
		r.Post("/api/messages", h.HandleSendMessage)
		r.Post("/api/messages/{id}/reactions", h.HandleToggleReaction)
		r.Get("/ws", h.HandleWebSocket)
	})

	return r
}

// NewMetricsRouter serves Prometheus metrics. It is mounted on its own
// listener so the disguised router never exposes chat counters.
func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Handle("/metrics", metrics.Handler())
	return r
}
