package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"doorman/infrastructure"
)

// TokenTTL is how long a verification token stays valid after issuance,
// whether or not it is used.
const TokenTTL = time.Hour

const tokenBytes = 32

// Manager issues and resolves the single-use, time-limited tokens that back
// auth links. At most one token per user is active at a time.
type Manager struct {
	tokens Repository
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(tokens Repository) *Manager {
	return &Manager{
		tokens: tokens,
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

// Issue generates a fresh URL-safe token for the user, invalidating any prior
// unused token.
func (m *Manager) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	value := base64.RawURLEncoding.EncodeToString(raw)

	err := m.tokens.Replace(ctx, &Token{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     value,
		CreatedAt: m.now(),
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

// Validate reports whether value is the user's active token: unused, matching,
// and within the TTL.
func (m *Manager) Validate(ctx context.Context, userID uuid.UUID, value string) (bool, error) {
	token, err := m.tokens.Active(ctx, userID)
	if errors.Is(err, infrastructure.ErrTokenNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if subtle.ConstantTimeCompare([]byte(token.Token), []byte(value)) != 1 {
		return false, nil
	}
	if m.now().After(token.CreatedAt.Add(m.ttl)) {
		return false, nil
	}
	return true, nil
}

// Consume marks the token used. Consuming twice fails with ErrTokenUsed;
// consuming past the TTL fails with ErrTokenExpired.
func (m *Manager) Consume(ctx context.Context, value string) error {
	token, err := m.tokens.ByValue(ctx, value)
	if err != nil {
		return err
	}
	if token.Used {
		return infrastructure.ErrTokenUsed
	}
	if m.now().After(token.CreatedAt.Add(m.ttl)) {
		return infrastructure.ErrTokenExpired
	}

	ok, err := m.tokens.MarkUsed(ctx, value)
	if err != nil {
		return err
	}
	if !ok {
		// Lost the race with another consumer.
		return infrastructure.ErrTokenUsed
	}
	return nil
}
