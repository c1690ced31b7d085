package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/UserService/internal/domain"
	"github.com/GoArmGo/UserService/internal/usecase"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// UserHandler — обработчик HTTP-запросов для работы с пользователями.
type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(uc usecase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: uc,
		logger:      logger,
	}
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"fail","message":"Something went very wrong!"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// decodeJSON — читает тело запроса; битый JSON считается ошибкой ввода.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
	}
	return nil
}

// ListUsers — GET /users, только доступные пользователи.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.userUseCase.ListUsers(r.Context())
	if err != nil {
		return err
	}

	respondWithJSON(w, http.StatusOK, listUsersResponse{
		Message: "Users found",
		Results: len(users),
		Users:   users,
	}, h.logger)
	return nil
}

// CreateUser — POST /users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) error {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	user, err := h.userUseCase.CreateUser(r.Context(), usecase.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	h.logger.Info("user created", "user_id", user.ID)
	respondWithJSON(w, http.StatusCreated, createUserResponse{
		Message: "User has been created!",
		User:    user,
	}, h.logger)
	return nil
}

// GetUser — GET /users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) error {
	user, err := h.userUseCase.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	respondWithJSON(w, http.StatusOK, userResponse{
		Status:  statusSuccess,
		Message: "User found",
		User:    user,
	}, h.logger)
	return nil
}

// UpdateUser — PATCH/PUT /users/{id}, меняет name и email.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) error {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	id := chi.URLParam(r, "id")
	if err := h.userUseCase.UpdateUser(r.Context(), id, usecase.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
	}); err != nil {
		return err
	}

	h.logger.Info("user updated", "user_id", id)
	respondWithJSON(w, http.StatusOK, statusResponse{
		Status:  statusSuccess,
		Message: "User has been updated",
	}, h.logger)
	return nil
}

// DisableUser — DELETE /users/{id}, мягкое удаление.
func (h *UserHandler) DisableUser(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if err := h.userUseCase.DisableUser(r.Context(), id); err != nil {
		return err
	}

	h.logger.Info("user disabled", "user_id", id)
	respondWithJSON(w, http.StatusOK, statusResponse{
		Status:  statusSuccess,
		Message: "User's account disabled!",
	}, h.logger)
	return nil
}

// Login — POST /login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	res, err := h.userUseCase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	respondWithJSON(w, http.StatusOK, loginResponse{
		Status: statusSuccess,
		Token:  res.Token,
		User:   res.User,
	}, h.logger)
	return nil
}
