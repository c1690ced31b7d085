package domain

import "errors"

var (
	// ErrNotFound — нет подходящей записи со статусом available.
	ErrNotFound = errors.New("user not found")
	// ErrUnauthorized — неверный email или пароль.
	ErrUnauthorized = errors.New("incorrect email or password")
	// ErrConstraintViolation — нарушено ограничение схемы (уникальность, not null, check).
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStore — ошибка хранилища (соединение, запрос).
	ErrStore = errors.New("store error")
	// ErrInvalidInput — в запросе нет обязательных полей.
	ErrInvalidInput = errors.New("invalid input")
)
