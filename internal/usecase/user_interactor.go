package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/UserService/internal/core/ports"
	"github.com/GoArmGo/UserService/internal/credential"
	"github.com/GoArmGo/UserService/internal/domain"
	"github.com/GoArmGo/UserService/internal/messaging/payloads"
	"github.com/google/uuid"
)

// userUseCase implements UserUseCase
type userUseCase struct {
	userStorage ports.UserStorage
	hasher      PasswordHasher
	issuer      TokenIssuer
	publisher   ports.UserEventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewUserUseCase создает новый экземпляр UserUseCase.
// publisher может быть nil, тогда события не публикуются
func NewUserUseCase(
	userStorage ports.UserStorage,
	hasher PasswordHasher,
	issuer TokenIssuer,
	publisher ports.UserEventPublisher,
	logger *slog.Logger,
) UserUseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	return &userUseCase{
		userStorage: userStorage,
		hasher:      hasher,
		issuer:      issuer,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ListUsers возвращает пользователей со статусом available
func (uc *userUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := uc.userStorage.FindAll(ctx, domain.UserFilter{Status: domain.StatusAvailable})
	if err != nil {
		return nil, fmt.Errorf("usecase: list users: %w", err)
	}
	return users, nil
}

// CreateUser создает пользователя. Пароль сохраняется только в виде хеша
func (uc *userUseCase) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrInvalidInput)
	}

	digest, err := uc.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, credential.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("usecase: hash password: %w", err)
	}

	user := &domain.User{
		Name:     normalize(in.Name),
		Email:    normalize(in.Email),
		Password: digest,
		Role:     in.Role,
		Status:   domain.StatusAvailable,
	}

	if err := uc.userStorage.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("usecase: create user: %w", err)
	}

	uc.publish(ctx, payloads.UserCreated, user)
	return user, nil
}

// findAvailable ищет доступного пользователя; невалидный ID считается отсутствующим
func (uc *userUseCase) findAvailable(ctx context.Context, id string) (*domain.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("usecase: user %q: %w", id, domain.ErrNotFound)
	}

	user, err := uc.userStorage.FindOne(ctx, domain.UserFilter{ID: userID, Status: domain.StatusAvailable})
	if err != nil {
		return nil, fmt.Errorf("usecase: find user %s: %w", userID, err)
	}
	if !user.IsAvailable() {
		return nil, fmt.Errorf("usecase: user %s: %w", userID, domain.ErrNotFound)
	}
	return user, nil
}

// GetUser возвращает доступного пользователя по ID
func (uc *userUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return uc.findAvailable(ctx, id)
}

// UpdateUser меняет только переданные поля. Чтение и запись не атомарны
func (uc *userUseCase) UpdateUser(ctx context.Context, id string, in UpdateUserInput) error {
	user, err := uc.findAvailable(ctx, id)
	if err != nil {
		return err
	}

	var changes domain.UserChanges
	if in.Name != nil {
		name := normalize(*in.Name)
		changes.Name = &name
	}
	if in.Email != nil {
		email := normalize(*in.Email)
		changes.Email = &email
	}

	if err := uc.userStorage.Update(ctx, user, changes); err != nil {
		return fmt.Errorf("usecase: update user %s: %w", user.ID, err)
	}

	if !changes.Empty() {
		uc.publish(ctx, payloads.UserUpdated, user)
	}
	return nil
}

// DisableUser — мягкое удаление: статус available -> unavailable
func (uc *userUseCase) DisableUser(ctx context.Context, id string) error {
	user, err := uc.findAvailable(ctx, id)
	if err != nil {
		return err
	}

	unavailable := domain.StatusUnavailable
	if err := uc.userStorage.Update(ctx, user, domain.UserChanges{Status: &unavailable}); err != nil {
		return fmt.Errorf("usecase: disable user %s: %w", user.ID, err)
	}

	uc.publish(ctx, payloads.UserDisabled, user)
	return nil
}

// Login проверяет учетные данные. Неизвестный email, отключенный аккаунт
// и неверный пароль дают одну и ту же ошибку domain.ErrUnauthorized
func (uc *userUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := uc.userStorage.FindOne(ctx, domain.UserFilter{Email: normalize(email), Status: domain.StatusAvailable})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("usecase: find user by email: %w", err)
	}

	if !user.IsAvailable() || !uc.hasher.Verify(password, user.Password) {
		return nil, domain.ErrUnauthorized
	}

	tok, err := uc.issuer.Issue(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("usecase: issue token: %w", err)
	}

	uc.publish(ctx, payloads.UserLoggedIn, user)
	return &LoginResult{Token: tok, User: user.Profile()}, nil
}

// publish отправляет событие; ошибка только логируется и не влияет на результат операции
func (uc *userUseCase) publish(ctx context.Context, eventType payloads.UserEventType, user *domain.User) {
	event := payloads.UserEvent{
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: uc.now().UTC(),
	}
	if err := uc.publisher.PublishUserEvent(ctx, event); err != nil {
		uc.logger.Warn("failed to publish user event",
			"type", eventType,
			"user_id", user.ID,
			"error", err,
		)
	}
}
