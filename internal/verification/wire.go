package verification

import (
	"database/sql"

	"github.com/google/wire"
)

// ProvideRepository is a Wire provider function that creates a verification.PostgresRepository
func ProvideRepository(db *sql.DB) Repository {
	return NewPostgresRepository(db)
}

func ProvideManager(tokens Repository) *Manager {
	return NewManager(tokens)
}

var Set = wire.NewSet(ProvideRepository, ProvideManager)
