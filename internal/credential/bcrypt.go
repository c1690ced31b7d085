// Package credential хеширует и проверяет пароли пользователей.
package credential

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost — рабочий фактор bcrypt по умолчанию.
	DefaultCost = 12
	// MaxPasswordBytes — bcrypt учитывает не больше 72 байт пароля.
	MaxPasswordBytes = 72
)

// ErrPasswordTooLong — пароль длиннее MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// Hasher хеширует пароль с солью и проверяет пароль по хешу.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// BcryptHasher реализует Hasher на bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher создает хешер, cost приводится к допустимому диапазону bcrypt.
// Нулевой cost означает DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost возвращает используемый рабочий фактор.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash возвращает bcrypt-хеш, соль и хеш закодированы в одной строке.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify сравнивает пароль с хешем. Битый хеш дает false, а не ошибку.
func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

var _ Hasher = (*BcryptHasher)(nil)
