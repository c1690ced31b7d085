package usecase

import (
	"context"

	"github.com/GoArmGo/UserService/internal/domain"
)

// CreateUserInput — данные для регистрации пользователя
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput — частичное обновление, nil-поля не меняются
type UpdateUserInput struct {
	Name  *string
	Email *string
}

// LoginResult — токен и публичный профиль после успешного входа
type LoginResult struct {
	Token string
	User  domain.Profile
}

// PasswordHasher хеширует пароли при создании и проверяет их при логине.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer выпускает подписанный токен для ID пользователя.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserUseCase определяет интерфейс для бизнес-логики работы с пользователями.
// Ошибки возвращаются как обернутые domain.Err*, их сопоставление с HTTP-кодами
// делает слой handler
type UserUseCase interface {
	// ListUsers возвращает всех пользователей со статусом available
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser нормализует имя и email, хеширует пароль и сохраняет пользователя
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)

	// GetUser возвращает доступного пользователя по ID
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// UpdateUser меняет имя и/или email доступного пользователя
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) error

	// DisableUser переводит пользователя в статус unavailable (мягкое удаление)
	DisableUser(ctx context.Context, id string) error

	// Login проверяет email и пароль и выпускает токен
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
