package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-notes-api/internal/config"
	"go-notes-api/internal/handler"
	"go-notes-api/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Note   *handler.NoteHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.BodyLimit(cfg.MaxRequestBodySize))

	r.Get("/health", h.Health.Check)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Route("/notes", func(notes chi.Router) {
			notes.Use(authMiddleware.RequireAuth)

			notes.Get("/", h.Note.List)
			notes.Post("/", h.Note.Create)
			notes.Get("/stats", h.Note.Stats)
			notes.Get("/{noteID}", h.Note.Get)
			notes.Put("/{noteID}", h.Note.Update)
			notes.Delete("/{noteID}", h.Note.Delete)
		})
	})

	return r
}
