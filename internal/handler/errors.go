package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/UserService/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const genericFailMessage = "Something went very wrong!"

// appHandler — обработчик, который возвращает ошибку вместо того, чтобы писать ее сам.
type appHandler func(w http.ResponseWriter, r *http.Request) error

// handle сопоставляет доменные ошибки с HTTP-ответами в одном месте.
// Детали внутренних ошибок клиенту не отдаются, только в лог.
func handle(logger *slog.Logger, fn appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		switch {
		case errors.Is(err, domain.ErrNotFound):
			id := chi.URLParam(r, "id")
			logger.Info("user not found", "id", id, "path", r.URL.Path)
			respondWithJSON(w, http.StatusNotFound, statusResponse{
				Status:  statusError,
				Message: notFoundMessage(r.Method, id),
			}, logger)

		case errors.Is(err, domain.ErrUnauthorized):
			logger.Info("authentication failed", "path", r.URL.Path)
			respondWithJSON(w, http.StatusUnauthorized, statusResponse{
				Status:  statusError,
				Message: "Incorrect email or Password",
			}, logger)

		case errors.Is(err, domain.ErrInvalidInput):
			logger.Warn("invalid request", "path", r.URL.Path, "error", err)
			respondWithJSON(w, http.StatusBadRequest, statusResponse{
				Status:  statusFail,
				Message: err.Error(),
			}, logger)

		default:
			logger.Error("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"error", err,
			)
			respondWithJSON(w, http.StatusInternalServerError, statusResponse{
				Status:  statusFail,
				Message: genericFailMessage,
			}, logger)
		}
	}
}

// notFoundMessage — текст 404 для GET, DELETE и обновления различается.
func notFoundMessage(method, id string) string {
	switch method {
	case http.MethodGet:
		return fmt.Sprintf("The user with id: %s doesn't exist", id)
	case http.MethodDelete:
		return fmt.Sprintf("User with id: %s doesn't exist!", id)
	default:
		return fmt.Sprintf("User with id: %s doesn't exist", id)
	}
}
