package main

import (
	"doorman/internal/auth"
	"doorman/internal/user"
	"doorman/pkg/jwt"
)

// AppServices bundles everything the HTTP server needs from the object graph.
type AppServices struct {
	AuthHandler *auth.Handler
	UserHandler *user.JSONHandler
	Bearer      *jwt.JWT
}

func ProvideAppServices(
	authHandler *auth.Handler,
	userHandler *user.JSONHandler,
	bearer *jwt.JWT,
) *AppServices {
	return &AppServices{
		AuthHandler: authHandler,
		UserHandler: userHandler,
		Bearer:      bearer,
	}
}
