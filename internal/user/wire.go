package user

import (
	"database/sql"

	"github.com/google/wire"
)

// ProvideUserStorage is a Wire provider function that creates a user.PostgresStorage
func ProvideUserStorage(db *sql.DB) *PostgresStorage {
	return NewUserPostgresStorage(db)
}

func ProvideRepository(db *sql.DB, storage *PostgresStorage) Repository {
	return NewRepository(db, storage, storage, storage)
}

func ProvideService(users Repository) *Service {
	return NewService(users)
}

func ProvideJSONHandler(users Repository) *JSONHandler {
	return NewJSONHandler(users)
}

var Set = wire.NewSet(ProvideUserStorage, ProvideRepository, ProvideService, ProvideJSONHandler)
