package auth

import (
	"github.com/google/wire"

	"doorman/config"
	"doorman/pkg/jwt"
)

func ProvideJWT(cfg *config.Config) *jwt.JWT {
	return jwt.NewJWT(cfg.JWTSecret, cfg.BearerTTL)
}

var Set = wire.NewSet(
	ProvideJWT,
	NewFlow,
	NewHandler,
)
