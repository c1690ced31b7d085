package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UserService/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// UserStorage реализует интерфейс ports.UserStorage с использованием GORM
type UserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *gorm.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

func (s *UserStorage) scoped(ctx context.Context, filter domain.UserFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&domain.User{})
	if filter.ID != uuid.Nil {
		q = q.Where("id = ?", filter.ID)
	}
	if filter.Email != "" {
		q = q.Where("email = ?", filter.Email)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

// FindAll получает пользователей по фильтру в порядке создания
func (s *UserStorage) FindAll(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	start := time.Now()

	users := []domain.User{}
	if err := s.scoped(ctx, filter).Order("created_at ASC").Find(&users).Error; err != nil {
		s.logger.Error("failed to list users", "status", filter.Status, "error", err)
		return nil, translateError("list users", err)
	}

	s.logger.Debug("listed users",
		"status", filter.Status,
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// FindOne получает первого пользователя по фильтру
func (s *UserStorage) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.scoped(ctx, filter).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("user not found", "id", filter.ID, "status", filter.Status)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to find user", "id", filter.ID, "error", err)
		return nil, translateError("find user", err)
	}

	s.logger.Debug("user found",
		"id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// Create сохраняет пользователя в бд
func (s *UserStorage) Create(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = domain.StatusAvailable
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		s.logger.Error("failed to create user", "id", user.ID, "error", err)
		return translateError("create user", err)
	}

	s.logger.Info("user created",
		"id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Update меняет только указанные поля, user обновляется на месте
func (s *UserStorage) Update(ctx context.Context, user *domain.User, changes domain.UserChanges) error {
	if changes.Empty() {
		return nil
	}
	start := time.Now()

	fields := map[string]any{}
	if changes.Name != nil {
		fields["name"] = *changes.Name
	}
	if changes.Email != nil {
		fields["email"] = *changes.Email
	}
	if changes.Status != nil {
		fields["status"] = *changes.Status
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(fields).Error; err != nil {
		s.logger.Error("failed to update user", "id", user.ID, "error", err)
		return translateError("update user", err)
	}

	s.logger.Info("user updated",
		"id", user.ID,
		"fields", len(fields),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// translateError сводит ошибки GORM и драйвера к domain.ErrConstraintViolation / domain.ErrStore
func translateError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConstraintViolation, err)
	}

	// lib/pq: класс 23 — integrity constraint violation
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConstraintViolation, err)
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
}
