package user

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"doorman/infrastructure"
)

type fakeRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[uuid.UUID]*User)}
}

func (f *fakeRepository) Create(_ context.Context, u *User) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return nil, infrastructure.ErrDuplicateUsername
		}
	}
	clone := *u
	f.users[u.ID] = &clone
	return u, nil
}

func (f *fakeRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, infrastructure.ErrUserNotFound
}

func (f *fakeRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email.Valid && u.Email.String == email {
			out := *u
			return &out, nil
		}
	}
	return nil, infrastructure.ErrUserNotFound
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, infrastructure.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeRepository) List(_ context.Context) ([]*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*User, 0, len(f.users))
	for _, u := range f.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeRepository) Mutate(_ context.Context, id uuid.UUID, fn func(*User) error) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, infrastructure.ErrUserNotFound
	}
	clone := *u
	if err := fn(&clone); err != nil {
		return nil, err
	}
	f.users[id] = &clone
	out := clone
	return &out, nil
}

func TestCreateHashesPassword(t *testing.T) {
	svc := NewService(newFakeRepository())

	u, err := svc.Create(context.Background(), "alice", "password1", DeliveryEmailShortcode)
	require.NoError(t, err)

	assert.NotEqual(t, "password1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password1")))
	assert.True(t, svc.CheckPassword(u, "password1"))
	assert.False(t, svc.CheckPassword(u, "Password1"))
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		delivery Delivery
		wantErr  error
	}{
		{"empty username", "", "password1", DeliveryEmailLink, infrastructure.ErrInvalidInput},
		{"username too long", "abcdefghijklmnopqrstu", "password1", DeliveryEmailLink, infrastructure.ErrInvalidInput},
		{"password too short", "alice", "short1", DeliveryEmailLink, infrastructure.ErrWeakPassword},
		{"low entropy password", "alice", "aaaaaaaa", DeliveryEmailLink, infrastructure.ErrWeakPassword},
		{"bad delivery", "alice", "password1", Delivery("carrier_pigeon"), infrastructure.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.username, tt.password, tt.delivery)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateDefaultsDelivery(t *testing.T) {
	svc := NewService(newFakeRepository())

	u, err := svc.Create(context.Background(), "alice", "password1", "")
	require.NoError(t, err)
	assert.Equal(t, DeliveryEmailLink, u.Delivery)
}

func TestSetEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	alice, err := svc.Create(ctx, "alice", "password1", DeliveryEmailShortcode)
	require.NoError(t, err)

	u, err := svc.SetEmail(ctx, alice.ID, "  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email.String)

	// Re-setting the same address on the same account is allowed.
	_, err = svc.SetEmail(ctx, alice.ID, "alice@example.com")
	require.NoError(t, err)

	bob, err := svc.Create(ctx, "bob", "password1", DeliveryEmailLink)
	require.NoError(t, err)
	_, err = svc.SetEmail(ctx, bob.ID, "alice@example.com")
	assert.ErrorIs(t, err, infrastructure.ErrDuplicateEmail)
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name@example.com", "x+y@sub.domain.org"}
	for _, addr := range valid {
		assert.NoError(t, ValidateEmail(addr), addr)
	}

	invalid := []string{"", "a@b.c", "no-at-sign.com", "@example.com", "user@", "user@nodot", "has space@example.com", "user@example.c om"}
	for _, addr := range invalid {
		assert.ErrorIs(t, ValidateEmail(addr), infrastructure.ErrInvalidEmail, addr)
	}
}
