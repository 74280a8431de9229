package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"doorman/infrastructure"
)

const keyPrefix = "session"

// Store keeps sessions and their challenge attempt counters in redis. The
// attempt counter uses INCR, so concurrent submissions against the same
// session can never observe more than the allowed number of effective
// attempts.
type Store struct {
	rdb         *redis.Client
	ttl         time.Duration
	rememberTTL time.Duration
}

func NewStore(rdb *redis.Client, ttl, rememberTTL time.Duration) *Store {
	return &Store{
		rdb:         rdb,
		ttl:         ttl,
		rememberTTL: rememberTTL,
	}
}

func sessionKey(id uuid.UUID) string  { return keyPrefix + ":" + id.String() }
func attemptsKey(id uuid.UUID) string { return keyPrefix + ":" + id.String() + ":attempts" }

func (s *Store) Create(ctx context.Context, userID uuid.UUID, username string, remember bool) (*Session, error) {
	session := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Username:  username,
		Remember:  remember,
		CreatedAt: time.Now(),
	}

	ttl := s.ttl
	if remember {
		ttl = s.rememberTTL
	}

	err := s.rdb.HSet(ctx, sessionKey(session.ID), map[string]interface{}{
		"user_id":    session.UserID.String(),
		"username":   session.Username,
		"remember":   strconv.FormatBool(session.Remember),
		"created_at": session.CreatedAt.Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.rdb.Expire(ctx, sessionKey(session.ID), ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to expire session: %w", err)
	}

	return session, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	fields, err := s.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, infrastructure.ErrSessionNotFound
	}

	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])
	remember, _ := strconv.ParseBool(fields["remember"])

	return &Session{
		ID:        id,
		UserID:    userID,
		Username:  fields["username"],
		Remember:  remember,
		CreatedAt: createdAt,
	}, nil
}

// Delete removes the session and its attempt counter. Deleting a session that
// is already gone is not an error.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, sessionKey(id), attemptsKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// IncrementAttempts atomically bumps the session's challenge attempt counter
// and returns the new count.
func (s *Store) IncrementAttempts(ctx context.Context, id uuid.UUID) (int64, error) {
	count, err := s.rdb.Incr(ctx, attemptsKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count attempt: %w", err)
	}
	if count == 1 {
		// Counter lives no longer than the session itself.
		_ = s.rdb.Expire(ctx, attemptsKey(id), s.rememberTTL).Err()
	}
	return count, nil
}

// ResetAttempts clears the counter; called whenever a fresh challenge is
// dispatched and after a successful resolution.
func (s *Store) ResetAttempts(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, attemptsKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	return nil
}
