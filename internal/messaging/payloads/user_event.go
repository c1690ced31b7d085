package payloads

import (
	"time"

	"github.com/google/uuid"
)

// UserEventType — тип события жизненного цикла пользователя.
type UserEventType string

const (
	UserCreated  UserEventType = "user.created"
	UserUpdated  UserEventType = "user.updated"
	UserDisabled UserEventType = "user.disabled"
	UserLoggedIn UserEventType = "user.logged_in"
)

// UserEvent передается через RabbitMQ от сервера к воркеру
// и архивируется воркером в S3.
type UserEvent struct {
	Type       UserEventType `json:"type"`
	UserID     uuid.UUID     `json:"user_id"`
	Email      string        `json:"email"`
	OccurredAt time.Time     `json:"occurred_at"`
}
