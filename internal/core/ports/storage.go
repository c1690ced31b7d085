package ports

import (
	"context"

	"github.com/GoArmGo/UserService/internal/domain"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	// FindAll возвращает всех пользователей, подходящих под фильтр
	FindAll(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)

	// FindOne возвращает первого подходящего пользователя или domain.ErrNotFound
	FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error)

	// Create сохраняет нового пользователя, ID генерируется если не задан
	Create(ctx context.Context, user *domain.User) error

	// Update меняет только переданные поля, остальные остаются как были
	Update(ctx context.Context, user *domain.User, changes domain.UserChanges) error
}

// HealthChecker проверяет доступность базы данных
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
