package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"doorman/infrastructure"
	"doorman/internal/email"
	"doorman/internal/sessions"
	"doorman/internal/shortcode"
	"doorman/internal/user"
	"doorman/internal/verification"
	"doorman/pkg/jwt"
)

// Flow is the authentication state machine. It owns every transition of a
// User record; handlers stay thin adapters over it. Persistent state is
// committed before mail goes out, so a delivery failure leaves the account in
// a consistent, retriable state.
type Flow struct {
	users    user.Repository
	creds    *user.Service
	tokens   *verification.Manager
	sessions *sessions.Store
	mailer   *email.Mailer
	bearer   *jwt.JWT
	log      *slog.Logger
}

func NewFlow(
	users user.Repository,
	creds *user.Service,
	tokens *verification.Manager,
	sessionStore *sessions.Store,
	mailer *email.Mailer,
	bearer *jwt.JWT,
) *Flow {
	return &Flow{
		users:    users,
		creds:    creds,
		tokens:   tokens,
		sessions: sessionStore,
		mailer:   mailer,
		bearer:   bearer,
		log:      slog.Default(),
	}
}

// Issued carries the credentials handed out after a transition that
// authenticates the caller.
type Issued struct {
	User    *user.User
	Session *sessions.Session
	Bearer  string
}

// LoginResult is an Issued plus the stage the account re-enters at.
type LoginResult struct {
	Issued
	Step Step
}

// Register creates an unverified account. Fails with ErrDuplicateUsername
// when the name is taken; no state is mutated in that case.
func (f *Flow) Register(ctx context.Context, username, password string, delivery user.Delivery) (*user.User, error) {
	u, err := f.creds.Create(ctx, username, password, delivery)
	if err != nil {
		return nil, err
	}
	f.log.InfoContext(ctx, "account registered", "username", u.Username, "delivery", string(u.Delivery))
	return u, nil
}

// SubmitEmail attaches the email address and issues the first bearer and
// session, moving the account toward the onboarding step.
func (f *Flow) SubmitEmail(ctx context.Context, username, emailAddr string) (*Issued, error) {
	u, err := f.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.IsVerified || u.IsActive {
		return nil, ErrAlreadyOnboarded
	}

	if _, err := f.creds.SetEmail(ctx, u.ID, emailAddr); err != nil {
		return nil, err
	}

	return f.issue(ctx, u.ID, false)
}

// SendOnboard marks the account active and sends the onboarding notice. The
// activation is committed first and is idempotent; the send is attempted on
// every call, so a transient delivery failure is recovered by hitting the
// route again.
func (f *Flow) SendOnboard(ctx context.Context, username string) error {
	u, err := f.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !u.Email.Valid {
		return ErrEmailRequired
	}

	if !u.IsActive {
		u, err = f.users.Mutate(ctx, u.ID, func(u *user.User) error {
			u.IsActive = true
			return nil
		})
		if err != nil {
			return err
		}
	}

	if err := f.mailer.SendOnboard(u.Email.String, u.Username); err != nil {
		f.log.ErrorContext(ctx, "onboard mail failed", "username", u.Username, "error", err)
		return err
	}
	return nil
}

// DispatchChallenge generates and delivers the one-time challenge according
// to the account's delivery capability: a numeric shortcode for shortcode and
// SMS accounts, a single-use auth link otherwise. Dispatching a fresh
// challenge invalidates the previous one and resets the session's attempt
// counter.
func (f *Flow) DispatchChallenge(ctx context.Context, username string, sessionID uuid.UUID) error {
	u, err := f.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}
	if !u.Email.Valid {
		return ErrEmailRequired
	}
	if !u.IsActive {
		return ErrNotActive
	}

	if u.Delivery.UsesShortcode() {
		code, err := shortcode.Generate()
		if err != nil {
			return err
		}
		u, err = f.users.Mutate(ctx, u.ID, func(u *user.User) error {
			u.Shortcode = sql.NullString{String: code, Valid: true}
			return nil
		})
		if err != nil {
			return err
		}
		if err := f.sessions.ResetAttempts(ctx, sessionID); err != nil {
			return err
		}
		// SMS delivery has no transport of its own here; the code rides the
		// same dispatcher.
		return f.mailer.SendShortcode(u.Email.String, u.Username, code)
	}

	route, err := f.tokens.Issue(ctx, u.ID)
	if err != nil {
		return err
	}
	u, err = f.users.Mutate(ctx, u.ID, func(u *user.User) error {
		u.AuthLinkRoute = sql.NullString{String: route, Valid: true}
		return nil
	})
	if err != nil {
		return err
	}
	return f.mailer.SendAuthLink(u.Email.String, u.Username, route)
}

// SubmitShortcode resolves a shortcode submission. The attempt is charged
// against the session counter before the candidate is ever compared, so
// concurrent submissions serialize on the atomic increment and at most
// MaxAttempts of them are evaluated against an outstanding code. A successful
// resolution refunds the counter; exhaustion clears the code so the original
// value can never be replayed.
func (f *Flow) SubmitShortcode(ctx context.Context, username string, sessionID uuid.UUID, candidate string) (shortcode.Result, *Issued, error) {
	var zero shortcode.Result

	u, err := f.users.GetByUsername(ctx, username)
	if err != nil {
		return zero, nil, err
	}
	if !u.Shortcode.Valid {
		return zero, nil, infrastructure.ErrChallengeNotFound
	}

	attempts, err := f.sessions.IncrementAttempts(ctx, sessionID)
	if err != nil {
		return zero, nil, err
	}
	if attempts > shortcode.MaxAttempts {
		return zero, nil, infrastructure.ErrChallengeExhausted
	}

	if shortcode.Matches(u.Shortcode.String, candidate) {
		_, err = f.users.Mutate(ctx, u.ID, func(u *user.User) error {
			// Re-check under the row lock: a concurrent submission may have
			// already consumed the code.
			if !u.Shortcode.Valid || !shortcode.Matches(u.Shortcode.String, candidate) {
				return infrastructure.ErrChallengeNotFound
			}
			u.IsVerified = true
			u.Shortcode = sql.NullString{}
			return nil
		})
		if err != nil {
			return zero, nil, err
		}
		if err := f.sessions.ResetAttempts(ctx, sessionID); err != nil {
			return zero, nil, err
		}

		issued, err := f.issue(ctx, u.ID, false)
		if err != nil {
			return zero, nil, err
		}
		f.log.InfoContext(ctx, "shortcode verified", "username", u.Username)
		return shortcode.Result{Outcome: shortcode.Success}, issued, nil
	}

	res := shortcode.AfterMiss(attempts)
	if res.Outcome == shortcode.Exhausted {
		if _, err := f.users.Mutate(ctx, u.ID, func(u *user.User) error {
			u.Shortcode = sql.NullString{}
			return nil
		}); err != nil {
			return zero, nil, err
		}
		// The counter stays spent until DispatchChallenge resets it with a
		// fresh code.
		f.log.InfoContext(ctx, "shortcode exhausted", "username", u.Username)
	}
	return res, nil, nil
}

// VisitAuthLink resolves a link-based challenge. The route must match the
// outstanding auth link and its backing token must still be valid; the token
// is consumed before the account is marked verified, so the same link can
// never authenticate twice.
func (f *Flow) VisitAuthLink(ctx context.Context, username, route string) error {
	u, err := f.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !u.AuthLinkRoute.Valid || u.AuthLinkRoute.String != route {
		return ErrLinkInvalid
	}

	ok, err := f.tokens.Validate(ctx, u.ID, route)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLinkInvalid
	}
	if err := f.tokens.Consume(ctx, route); err != nil {
		// Fail closed: an ambiguous consume denies authentication.
		return ErrLinkInvalid
	}

	_, err = f.users.Mutate(ctx, u.ID, func(u *user.User) error {
		u.IsVerified = true
		u.AuthLinkRoute = sql.NullString{}
		return nil
	})
	if err != nil {
		return err
	}
	f.log.InfoContext(ctx, "auth link verified", "username", username)
	return nil
}

// Login checks credentials and re-enters the flow at whichever stage is
// incomplete. A wrong password returns ErrInvalidCredentials and mutates
// nothing; the account is never locked out here.
func (f *Flow) Login(ctx context.Context, username, password string, remember bool) (*LoginResult, error) {
	u, err := f.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !f.creds.CheckPassword(u, password) {
		return nil, infrastructure.ErrInvalidCredentials
	}

	issued, err := f.issue(ctx, u.ID, remember)
	if err != nil {
		return nil, err
	}
	f.log.InfoContext(ctx, "login", "username", u.Username)

	return &LoginResult{
		Issued: *issued,
		Step:   NextStep(issued.User),
	}, nil
}

// Logout revokes the session and clears the stored bearer. Revoking an
// already-gone session is a no-op.
func (f *Flow) Logout(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := f.sessions.Get(ctx, sessionID)
	if errors.Is(err, infrastructure.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := f.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}

	_, err = f.users.Mutate(ctx, sess.UserID, func(u *user.User) error {
		u.BearerToken = sql.NullString{}
		return nil
	})
	if errors.Is(err, infrastructure.ErrUserNotFound) {
		return nil
	}
	return err
}

// Status returns the account and its next step, for the routing hub.
func (f *Flow) Status(ctx context.Context, username string) (*user.User, Step, error) {
	u, err := f.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, StepEmail, err
	}
	return u, NextStep(u), nil
}

// issue creates the session and signed bearer for the user and records the
// authentication time on the row.
func (f *Flow) issue(ctx context.Context, userID uuid.UUID, remember bool) (*Issued, error) {
	u, err := f.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := f.bearer.GenerateToken(u.ID.String(), u.Username, u.IsAdmin)
	if err != nil {
		return nil, err
	}

	session, err := f.sessions.Create(ctx, u.ID, u.Username, remember)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u, err = f.users.Mutate(ctx, u.ID, func(u *user.User) error {
		u.BearerToken = sql.NullString{String: token, Valid: true}
		u.CurrentAuthTime = sql.NullTime{Time: now, Valid: true}
		u.LastLogin = sql.NullTime{Time: now, Valid: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Issued{User: u, Session: session, Bearer: token}, nil
}
