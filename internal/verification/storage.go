package verification

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"doorman/infrastructure"
)

// Repository persists verification tokens. Replace and Consume are atomic:
// concurrent issue/consume on the same user serialize inside the store, so a
// token is never observed as active twice.
type Repository interface {
	Replace(ctx context.Context, token *Token) error
	Active(ctx context.Context, userID uuid.UUID) (*Token, error)
	ByValue(ctx context.Context, value string) (*Token, error)
	MarkUsed(ctx context.Context, value string) (bool, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace invalidates any prior unused token for the user and stores the new
// one in the same transaction, keeping at most one active token per user.
func (r *PostgresRepository) Replace(ctx context.Context, token *Token) error {
	return infrastructure.WithTransaction(r.db, ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"UPDATE verification_tokens SET is_used = TRUE WHERE user_id = $1 AND NOT is_used",
			token.UserID); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO verification_tokens (id, user_id, token, created_at, is_used)
			VALUES ($1, $2, $3, $4, $5)`,
			token.ID, token.UserID, token.Token, token.CreatedAt, token.Used)
		return err
	})
}

func (r *PostgresRepository) Active(ctx context.Context, userID uuid.UUID) (*Token, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, created_at, is_used
		FROM verification_tokens
		WHERE user_id = $1 AND NOT is_used
		ORDER BY created_at DESC
		LIMIT 1`, userID))
}

func (r *PostgresRepository) ByValue(ctx context.Context, value string) (*Token, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, created_at, is_used
		FROM verification_tokens
		WHERE token = $1`, value))
}

// MarkUsed flips is_used in a single statement; the WHERE clause makes the
// consume atomic under concurrency. Returns false when the token was already
// used or does not exist.
func (r *PostgresRepository) MarkUsed(ctx context.Context, value string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE verification_tokens SET is_used = TRUE WHERE token = $1 AND NOT is_used", value)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*Token, error) {
	token := &Token{}
	err := row.Scan(&token.ID, &token.UserID, &token.Token, &token.CreatedAt, &token.Used)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, infrastructure.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}
