package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(20) NOT NULL,
		email VARCHAR(120),
		password_hash VARCHAR(128) NOT NULL,
		delivery VARCHAR(20) NOT NULL DEFAULT 'email_link',
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		shortcode VARCHAR(6),
		auth_link_route VARCHAR(60),
		bearer_token VARCHAR(512),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login TIMESTAMPTZ,
		current_auth_time TIMESTAMPTZ,
		CONSTRAINT user_account_username UNIQUE (username),
		CONSTRAINT user_account_email UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS verification_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		token VARCHAR(100) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_used BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verification_tokens_user ON verification_tokens (user_id) WHERE NOT is_used`,
}

// Migrate creates the tables the service owns. Schema changes beyond this
// bootstrap are handled by external migration tooling.
func Migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	slog.Info("Database migration completed")
	return nil
}
