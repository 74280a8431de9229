//go:build wireinject
// +build wireinject

package main

import (
	"database/sql"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"doorman/config"
	"doorman/internal/auth"
	"doorman/internal/email"
	"doorman/internal/sessions"
	"doorman/internal/user"
	"doorman/internal/verification"
)

var AppSet = wire.NewSet(
	user.Set,
	verification.Set,
	sessions.Set,
	email.Set,
	auth.Set,
	ProvideAppServices,
)

func InitializeApp(db *sql.DB, rdb *redis.Client, cfg *config.Config) *AppServices {
	wire.Build(AppSet)
	return &AppServices{}
}
