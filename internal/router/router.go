package router

import (
	"barterhub-api/internal/handler"
	"barterhub-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler       *handler.Handler
	UserHandler   *handler.UserHandler
	ItemHandler   *handler.ItemHandler
	SwapHandler   *handler.SwapHandler
	InviteHandler *handler.InviteHandler
	ChatHandler   *handler.ChatHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.UserHandler != nil {
			r.Route("/users/{identity}", func(r chi.Router) {
				r.Put("/", cfg.UserHandler.Register)
				r.Get("/", cfg.UserHandler.Get)
			})
		}

		if cfg.ItemHandler != nil {
			r.Route("/items", func(r chi.Router) {
				r.Post("/", cfg.ItemHandler.Upload)
				r.Get("/search", cfg.ItemHandler.Search)
			})
		}

		if cfg.SwapHandler != nil {
			r.Get("/swaps/recommend", cfg.SwapHandler.Recommend)
		}

		if cfg.InviteHandler != nil {
			r.Route("/invites", func(r chi.Router) {
				r.Post("/", cfg.InviteHandler.Create)
				r.Get("/", cfg.InviteHandler.List)
				r.Post("/{id}/accept", cfg.InviteHandler.Accept)
				r.Post("/{id}/reject", cfg.InviteHandler.Reject)
			})
		}

		if cfg.ChatHandler != nil {
			r.Route("/chats", func(r chi.Router) {
				r.Get("/", cfg.ChatHandler.List)
				r.Get("/{id}/messages", cfg.ChatHandler.Messages)
				r.Post("/{id}/messages", cfg.ChatHandler.PostMessage)
				r.Post("/{id}/done", cfg.ChatHandler.ConfirmDone)
			})
		}
	})

	return r
}
