package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/UserService/internal/credential"
	"github.com/GoArmGo/UserService/internal/domain"
	"github.com/GoArmGo/UserService/internal/messaging/payloads"
	"github.com/GoArmGo/UserService/internal/token"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type fakeUserStorage struct {
	mu    sync.Mutex
	users []*domain.User

	findAllErr error
	findOneErr error
	createErr  error
	updateErr  error

	// ignoreStatus имитирует хранилище, которое не фильтрует по статусу
	ignoreStatus bool
}

func (f *fakeUserStorage) matches(u *domain.User, filter domain.UserFilter) bool {
	if filter.ID != uuid.Nil && u.ID != filter.ID {
		return false
	}
	if filter.Email != "" && u.Email != filter.Email {
		return false
	}
	if !f.ignoreStatus && filter.Status != "" && u.Status != filter.Status {
		return false
	}
	return true
}

func (f *fakeUserStorage) FindAll(_ context.Context, filter domain.UserFilter) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findAllErr != nil {
		return nil, f.findAllErr
	}
	out := []domain.User{}
	for _, u := range f.users {
		if f.matches(u, filter) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStorage) FindOne(_ context.Context, filter domain.UserFilter) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findOneErr != nil {
		return nil, f.findOneErr
	}
	for _, u := range f.users {
		if f.matches(u, filter) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserStorage) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.users = append(f.users, &cp)
	return nil
}

func (f *fakeUserStorage) Update(_ context.Context, user *domain.User, changes domain.UserChanges) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, u := range f.users {
		if u.ID != user.ID {
			continue
		}
		if changes.Name != nil {
			u.Name, user.Name = *changes.Name, *changes.Name
		}
		if changes.Email != nil {
			u.Email, user.Email = *changes.Email, *changes.Email
		}
		if changes.Status != nil {
			u.Status, user.Status = *changes.Status, *changes.Status
		}
	}
	return nil
}

func (f *fakeUserStorage) stored(id uuid.UUID) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp
		}
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []payloads.UserEvent
	err    error
}

func (p *fakePublisher) PublishUserEvent(_ context.Context, e payloads.UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *fakePublisher) types() []payloads.UserEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]payloads.UserEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("rng exhausted") }
func (failingHasher) Verify(string, string) bool  { return false }

type failingIssuer struct{}

func (failingIssuer) Issue(string) (string, error) { return "", errors.New("no key") }

// --- helpers ---

const testSecret = "test-secret-for-usecase-tests"

type fixture struct {
	uc        UserUseCase
	store     *fakeUserStorage
	publisher *fakePublisher
	issuer    *token.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &fakeUserStorage{}
	pub := &fakePublisher{}
	iss := token.NewIssuer(testSecret, time.Hour)
	uc := NewUserUseCase(store, credential.NewBcryptHasher(bcrypt.MinCost), iss, pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &fixture{uc: uc, store: store, publisher: pub, issuer: iss}
}

func (f *fixture) create(t *testing.T, name, email, password string) *domain.User {
	t.Helper()
	u, err := f.uc.CreateUser(context.Background(), CreateUserInput{Name: name, Email: email, Password: password, Role: "user"})
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

// --- tests ---

func TestCreateUser_HashesAndNormalizes(t *testing.T) {
	f := newFixture(t)

	u := f.create(t, "Alice", "ALICE@X.COM", "s3cret")

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "alice", u.Name)
	assert.Equal(t, "alice@x.com", u.Email)
	assert.Equal(t, "user", u.Role)
	assert.Equal(t, domain.StatusAvailable, u.Status)

	stored := f.store.stored(u.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret")))

	assert.Equal(t, []payloads.UserEventType{payloads.UserCreated}, f.publisher.types())
}

func TestCreateUser_RoundTripThroughGet(t *testing.T) {
	f := newFixture(t)

	u := f.create(t, "Alice", "ALICE@X.COM", "s3cret")

	got, err := f.uc.GetUser(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, "alice@x.com", got.Email)
}

func TestCreateUser_MissingFields(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   CreateUserInput
	}{
		{"no password", CreateUserInput{Name: "a", Email: "a@x.com"}},
		{"no name", CreateUserInput{Email: "a@x.com", Password: "p"}},
		{"blank email", CreateUserInput{Name: "a", Email: "  ", Password: "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreateUser(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, f.publisher.types())
}

func TestCreateUser_PasswordTooLong(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateUser(context.Background(), CreateUserInput{
		Name:     "a",
		Email:    "a@x.com",
		Password: strings.Repeat("x", credential.MaxPasswordBytes+1),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, err, credential.ErrPasswordTooLong)
	assert.Empty(t, f.store.users)
}

func TestCreateUser_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.createErr = domain.ErrConstraintViolation

	_, err := f.uc.CreateUser(context.Background(), CreateUserInput{Name: "a", Email: "a@x.com", Password: "p"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.Empty(t, f.publisher.types())
}

func TestCreateUser_HashFailure(t *testing.T) {
	store := &fakeUserStorage{}
	uc := NewUserUseCase(store, failingHasher{}, token.NewIssuer(testSecret, time.Hour), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := uc.CreateUser(context.Background(), CreateUserInput{Name: "a", Email: "a@x.com", Password: "p"})
	require.Error(t, err)
	assert.Empty(t, store.users)
}

func TestCreateUser_PublishFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	u, err := f.uc.CreateUser(context.Background(), CreateUserInput{Name: "a", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.NotNil(t, f.store.stored(u.ID))
}

func TestListUsers_OnlyAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, "a", "a@x.com", "p")
	f.create(t, "b", "b@x.com", "p")
	c := f.create(t, "c", "c@x.com", "p")
	require.NoError(t, f.uc.DisableUser(ctx, c.ID.String()))

	users, err := f.uc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestListUsers_Empty(t *testing.T) {
	f := newFixture(t)

	users, err := f.uc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestListUsers_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.findAllErr = domain.ErrStore

	_, err := f.uc.ListUsers(context.Background())
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestGetUser_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.GetUser(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetUser_InvalidIDIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.GetUser(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateUser_ChangesOnlyGivenFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.create(t, "alice", "alice@x.com", "p")
	require.NoError(t, f.uc.UpdateUser(ctx, u.ID.String(), UpdateUserInput{Email: strPtr("NEW@X.COM")}))

	stored := f.store.stored(u.ID)
	assert.Equal(t, "alice", stored.Name)
	assert.Equal(t, "new@x.com", stored.Email)
	assert.Equal(t, domain.StatusAvailable, stored.Status)
	assert.Equal(t, []payloads.UserEventType{payloads.UserCreated, payloads.UserUpdated}, f.publisher.types())
}

func TestUpdateUser_NoFieldsPublishesNothing(t *testing.T) {
	f := newFixture(t)

	u := f.create(t, "alice", "alice@x.com", "p")
	require.NoError(t, f.uc.UpdateUser(context.Background(), u.ID.String(), UpdateUserInput{}))

	assert.Equal(t, []payloads.UserEventType{payloads.UserCreated}, f.publisher.types())
}

func TestUpdateUser_StoreFailure(t *testing.T) {
	f := newFixture(t)

	u := f.create(t, "alice", "alice@x.com", "p")
	f.store.updateErr = domain.ErrStore

	err := f.uc.UpdateUser(context.Background(), u.ID.String(), UpdateUserInput{Name: strPtr("bob")})
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestDisableUser_HidesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.create(t, "alice", "alice@x.com", "p")
	id := u.ID.String()

	require.NoError(t, f.uc.DisableUser(ctx, id))
	assert.Equal(t, domain.StatusUnavailable, f.store.stored(u.ID).Status)

	_, err := f.uc.GetUser(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.uc.UpdateUser(ctx, id, UpdateUserInput{Name: strPtr("bob")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// повторное отключение — NotFound, а не второй успех
	err = f.uc.DisableUser(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, "alice", f.store.stored(u.ID).Name)
	assert.Equal(t, []payloads.UserEventType{payloads.UserCreated, payloads.UserDisabled}, f.publisher.types())
}

func TestDisabledUser_HiddenEvenIfStoreIgnoresStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.create(t, "alice", "alice@x.com", "s3cret")
	require.NoError(t, f.uc.DisableUser(ctx, u.ID.String()))
	f.store.ignoreStatus = true

	_, err := f.uc.GetUser(ctx, u.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Login(ctx, "alice@x.com", "s3cret")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)

	u := f.create(t, "Alice", "alice@x.com", "s3cret")

	res, err := f.uc.Login(context.Background(), "ALICE@x.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	assert.Equal(t, domain.Profile{ID: u.ID, Name: "alice", Email: "alice@x.com", Role: "user"}, res.User)

	claims, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID())

	assert.Contains(t, f.publisher.types(), payloads.UserLoggedIn)
}

func TestLogin_Unauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.create(t, "alice", "alice@x.com", "s3cret")
	f.create(t, "bob", "bob@x.com", "s3cret")
	bob, err := f.store.FindOne(ctx, domain.UserFilter{Email: "bob@x.com"})
	require.NoError(t, err)
	require.NoError(t, f.uc.DisableUser(ctx, bob.ID.String()))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "alice@x.com", "nope"},
		{"unknown email", "ghost@x.com", "s3cret"},
		{"disabled user", "bob@x.com", "s3cret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.uc.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Nil(t, res)
		})
	}
	assert.NotNil(t, f.store.stored(u.ID))
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Login(context.Background(), "", "p")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Login(context.Background(), "a@x.com", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.findOneErr = domain.ErrStore

	_, err := f.uc.Login(context.Background(), "a@x.com", "p")
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_IssuerFailure(t *testing.T) {
	store := &fakeUserStorage{}
	hasher := credential.NewBcryptHasher(bcrypt.MinCost)
	uc := NewUserUseCase(store, hasher, failingIssuer{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := uc.CreateUser(context.Background(), CreateUserInput{Name: "a", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), "a@x.com", "p")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}
