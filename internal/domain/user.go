// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus описывает состояние учетной записи.
type UserStatus string

const (
	StatusAvailable   UserStatus = "available"
	StatusUnavailable UserStatus = "unavailable"
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"size:255;not null"`
	Email     string     `json:"email" gorm:"size:320;not null;index"`
	Password  string     `json:"-" gorm:"size:255;not null"`
	Role      string     `json:"role" gorm:"size:64"`
	Status    UserStatus `json:"status" gorm:"size:32;not null;default:'available';index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAvailable сообщает, виден ли пользователь для обычных CRUD-операций.
func (u *User) IsAvailable() bool {
	return u.Status == StatusAvailable
}

// Profile возвращает публичную часть пользователя (без хеша пароля).
func (u *User) Profile() Profile {
	return Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// Profile — публичный профиль, который отдается после логина.
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// UserFilter задает условия выборки, нулевые поля игнорируются.
type UserFilter struct {
	ID     uuid.UUID
	Email  string
	Status UserStatus
}

// UserChanges — частичное обновление: меняются только не-nil поля.
type UserChanges struct {
	Name   *string
	Email  *string
	Status *UserStatus
}

// Empty сообщает, что обновлять нечего.
func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Email == nil && c.Status == nil
}
