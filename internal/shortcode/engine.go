// Package shortcode implements the numeric one-time challenge: generation of
// a 6-digit code and the pure decision function over a bounded attempt
// counter. The counter itself lives in the caller's session store.
package shortcode

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// MaxAttempts is the number of submissions a session gets before the
// outstanding code is invalidated.
const MaxAttempts = 3

const (
	codeMin  = 100000
	codeSpan = 900000
)

// Outcome tags the result of a shortcode submission.
type Outcome int

const (
	// Success: the candidate matched the outstanding code.
	Success Outcome = iota
	// Retry: mismatch, attempts remain.
	Retry
	// Exhausted: mismatch and no attempts remain; the code must be
	// re-dispatched before another try.
	Exhausted
)

type Result struct {
	Outcome      Outcome
	AttemptsLeft int
}

// Generate returns a 6-digit code in [100000, 999999] from a cryptographically
// secure source.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// Matches compares candidate against the stored code in constant time.
func Matches(stored, candidate string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// AfterMiss maps the post-increment attempt count of a failed submission to
// its Result.
func AfterMiss(attempts int64) Result {
	left := MaxAttempts - int(attempts)
	if left <= 0 {
		return Result{Outcome: Exhausted, AttemptsLeft: 0}
	}
	return Result{Outcome: Retry, AttemptsLeft: left}
}

// Evaluate is the pure form of a submission: given the stored code, the
// candidate, and the attempts already spent in this session, it returns the
// tagged result. Callers that need an atomic counter increment use Matches
// and AfterMiss around their store instead.
func Evaluate(stored, candidate string, priorAttempts int64) Result {
	if Matches(stored, candidate) {
		return Result{Outcome: Success, AttemptsLeft: MaxAttempts - int(priorAttempts)}
	}
	return AfterMiss(priorAttempts + 1)
}
