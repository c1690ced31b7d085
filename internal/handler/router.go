package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter собирает маршруты и middleware сервиса.
func NewRouter(users *UserHandler, health *HealthHandler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RecoverJSON(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/users", handle(logger, users.ListUsers))
	r.Post("/users", handle(logger, users.CreateUser))
	r.Get("/users/{id}", handle(logger, users.GetUser))
	r.Patch("/users/{id}", handle(logger, users.UpdateUser))
	r.Put("/users/{id}", handle(logger, users.UpdateUser))
	r.Delete("/users/{id}", handle(logger, users.DisableUser))
	r.Post("/login", handle(logger, users.Login))

	if health != nil {
		r.Get("/healthz", health.Healthz)
	}

	return r
}
