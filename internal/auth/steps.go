package auth

import "doorman/internal/user"

// Step is the next stage an account has to complete. Login re-enters the flow
// at whichever step is still incomplete.
type Step int

const (
	// StepEmail: no email captured yet.
	StepEmail Step = iota
	// StepOnboard: email captured, onboarding mail not yet confirmed.
	StepOnboard
	// StepChallenge: active but the one-time challenge is unresolved.
	StepChallenge
	// StepDone: fully verified.
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepEmail:
		return "email"
	case StepOnboard:
		return "onboard"
	case StepChallenge:
		return "challenge"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// NextStep decides the next incomplete stage for an account.
func NextStep(u *user.User) Step {
	switch {
	case !u.Email.Valid:
		return StepEmail
	case !u.IsActive:
		return StepOnboard
	case !u.IsVerified:
		return StepChallenge
	}
	return StepDone
}
