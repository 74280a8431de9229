package auth

import "errors"

var (
	// ErrAlreadyOnboarded is returned when email capture is attempted on an
	// account that is already active or verified.
	ErrAlreadyOnboarded = errors.New("account already onboarded")
	// ErrEmailRequired is returned when a stage needs a captured email first.
	ErrEmailRequired = errors.New("email address required")
	// ErrNotActive is returned when a challenge is dispatched before the
	// onboarding step completed.
	ErrNotActive = errors.New("account not yet active")
	// ErrAlreadyVerified is returned when a challenge is dispatched for an
	// account that has already resolved one.
	ErrAlreadyVerified = errors.New("account already verified")
	// ErrLinkInvalid is returned for an auth link that does not match the
	// outstanding route or whose backing token is no longer valid.
	ErrLinkInvalid = errors.New("auth link invalid")
)
