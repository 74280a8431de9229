package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"

	"doorman/infrastructure"
)

const (
	maxUsernameLen = 20
	minPasswordLen = 8
	maxPasswordLen = 150
	minEmailLen    = 6
	maxEmailLen    = 120

	// minPasswordEntropy is the go-password-validator entropy floor. Kept
	// low enough that an 8+ character mixed password passes; the length
	// bounds above do the rest.
	minPasswordEntropy = 40
)

// Service owns the user credential primitives: account creation, password
// verification, and email capture. All state transitions beyond these go
// through the auth flow.
type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

// Create registers a new account. The password is hashed immediately and the
// plaintext is never stored or logged.
func (s *Service) Create(ctx context.Context, username, password string, delivery Delivery) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLen {
		return nil, infrastructure.ErrInvalidInput
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return nil, infrastructure.ErrWeakPassword
	}
	if err := passwordvalidator.Validate(password, minPasswordEntropy); err != nil {
		return nil, infrastructure.ErrWeakPassword
	}
	if delivery == "" {
		delivery = DeliveryEmailLink
	}
	if !delivery.Valid() {
		return nil, infrastructure.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	return s.users.Create(ctx, &User{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		Delivery:     delivery,
		CreatedAt:    time.Now(),
	})
}

// CheckPassword compares the plaintext against the stored hash. bcrypt's
// comparison is constant time over the hash.
func (s *Service) CheckPassword(user *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// SetEmail validates and attaches an email address to the account. The unique
// index backstops the duplicate check against concurrent writers.
func (s *Service) SetEmail(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, infrastructure.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, infrastructure.ErrDuplicateEmail
	}

	return s.users.Mutate(ctx, id, func(u *User) error {
		u.Email = sql.NullString{String: email, Valid: true}
		return nil
	})
}

// ValidateEmail applies the same shape check the registration form uses.
func ValidateEmail(email string) error {
	if len(email) < minEmailLen || len(email) > maxEmailLen {
		return infrastructure.ErrInvalidEmail
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return infrastructure.ErrInvalidEmail
	}
	if !strings.Contains(email[at:], ".") {
		return infrastructure.ErrInvalidEmail
	}
	if strings.ContainsAny(email, " \t") {
		return infrastructure.ErrInvalidEmail
	}
	return nil
}
