package handler

import "github.com/GoArmGo/UserService/internal/domain"

const (
	statusSuccess = "success"
	statusError   = "error"
	statusFail    = "fail"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// nil означает, что поле не передано и не меняется
type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type listUsersResponse struct {
	Message string        `json:"message"`
	Results int           `json:"results"`
	Users   []domain.User `json:"users"`
}

type createUserResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type userResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type loginResponse struct {
	Status string         `json:"status"`
	Token  string         `json:"token"`
	User   domain.Profile `json:"user"`
}
