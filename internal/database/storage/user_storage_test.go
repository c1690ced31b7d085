package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoArmGo/UserService/internal/domain"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStorage(t *testing.T) *UserStorage {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewUserStorage(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newMockStorage(t *testing.T) (*UserStorage, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	return NewUserStorage(db, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func createUser(t *testing.T, s *UserStorage, name, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, Password: "digest", Role: "user"}
	require.NoError(t, s.Create(context.Background(), u))
	return u
}

func TestUserStorage_Create(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	u := createUser(t, s, "alice", "alice@x.com")

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, domain.StatusAvailable, u.Status)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.FindOne(ctx, domain.UserFilter{ID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, "alice@x.com", got.Email)
	assert.Equal(t, "digest", got.Password)
	assert.Equal(t, "user", got.Role)
}

func TestUserStorage_CreateKeepsGivenID(t *testing.T) {
	s := newTestStorage(t)

	id := uuid.New()
	u := &domain.User{ID: id, Name: "bob", Email: "bob@x.com", Password: "digest"}
	require.NoError(t, s.Create(context.Background(), u))

	assert.Equal(t, id, u.ID)
}

func TestUserStorage_FindOne_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.FindOne(context.Background(), domain.UserFilter{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserStorage_FindOne_Filters(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	u := createUser(t, s, "carol", "carol@x.com")
	unavailable := domain.StatusUnavailable
	require.NoError(t, s.Update(ctx, u, domain.UserChanges{Status: &unavailable}))

	_, err := s.FindOne(ctx, domain.UserFilter{ID: u.ID, Status: domain.StatusAvailable})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.FindOne(ctx, domain.UserFilter{Email: "carol@x.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnavailable, got.Status)
}

func TestUserStorage_FindAll_ByStatus(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	createUser(t, s, "a", "a@x.com")
	createUser(t, s, "b", "b@x.com")
	c := createUser(t, s, "c", "c@x.com")

	unavailable := domain.StatusUnavailable
	require.NoError(t, s.Update(ctx, c, domain.UserChanges{Status: &unavailable}))

	available, err := s.FindAll(ctx, domain.UserFilter{Status: domain.StatusAvailable})
	require.NoError(t, err)
	assert.Len(t, available, 2)

	all, err := s.FindAll(ctx, domain.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUserStorage_FindAll_Empty(t *testing.T) {
	s := newTestStorage(t)

	users, err := s.FindAll(context.Background(), domain.UserFilter{Status: domain.StatusAvailable})
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserStorage_Update_OnlyNamedFields(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	u := createUser(t, s, "dave", "dave@x.com")

	name := "david"
	require.NoError(t, s.Update(ctx, u, domain.UserChanges{Name: &name}))

	got, err := s.FindOne(ctx, domain.UserFilter{ID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, "david", got.Name)
	assert.Equal(t, "dave@x.com", got.Email)
	assert.Equal(t, "digest", got.Password)
	assert.Equal(t, "user", got.Role)
	assert.Equal(t, domain.StatusAvailable, got.Status)
}

func TestUserStorage_Update_NoChanges(t *testing.T) {
	s := newTestStorage(t)

	u := createUser(t, s, "erin", "erin@x.com")
	assert.NoError(t, s.Update(context.Background(), u, domain.UserChanges{}))
}

func TestUserStorage_FindAll_ConnectivityError(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("connection refused"))

	_, err := s.FindAll(context.Background(), domain.UserFilter{Status: domain.StatusAvailable})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStorage_FindOne_ConnectivityError(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("connection reset"))

	_, err := s.FindOne(context.Background(), domain.UserFilter{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"gorm duplicated key", gorm.ErrDuplicatedKey, domain.ErrConstraintViolation},
		{"gorm check constraint", gorm.ErrCheckConstraintViolated, domain.ErrConstraintViolation},
		{"pq unique violation", &pq.Error{Code: "23505"}, domain.ErrConstraintViolation},
		{"pq not null violation", &pq.Error{Code: "23502"}, domain.ErrConstraintViolation},
		{"pq connection failure", &pq.Error{Code: "08006"}, domain.ErrStore},
		{"plain error", errors.New("boom"), domain.ErrStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
