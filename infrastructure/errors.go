package infrastructure

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenNotFound = errors.New("verification token not found")
	ErrTokenExpired  = errors.New("verification token has expired")
	ErrTokenUsed     = errors.New("verification token already used")

	ErrChallengeNotFound  = errors.New("no outstanding challenge")
	ErrChallengeExhausted = errors.New("challenge attempts exhausted")

	ErrSessionNotFound = errors.New("session not found")
	ErrMailDelivery    = errors.New("mail delivery failed")
)
