package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"doorman/config"
	"doorman/infrastructure"
	"doorman/internal/shortcode"
	"doorman/internal/user"
	"doorman/pkg/jwt"
)

const (
	// BearerCookie carries the signed bearer credential.
	BearerCookie = "access_token"
	// SessionCookie carries the opaque session identifier.
	SessionCookie = "session_id"
)

// Handler adapts the auth flow to the HTTP surface. It holds no business
// logic: every decision is made by the Flow, and the handler only translates
// between forms, cookies, redirects, and flow results.
type Handler struct {
	flow    *Flow
	bearer  *jwt.JWT
	homeURL string
}

func NewHandler(flow *Flow, bearer *jwt.JWT, cfg *config.Config) *Handler {
	return &Handler{
		flow:    flow,
		bearer:  bearer,
		homeURL: cfg.HomeURL,
	}
}

// Index routes the bare origin: authenticated users go home, everyone else
// goes to registration.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(BearerCookie); err == nil {
		if _, err := h.bearer.ValidateToken(cookie.Value); err == nil {
			http.Redirect(w, r, h.homeURL, http.StatusSeeOther)
			return
		}
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	delivery := user.Delivery(r.FormValue("delivery"))

	u, err := h.flow.Register(r.Context(), username, password, delivery)
	if err != nil {
		h.writeError(w, err)
		return
	}

	http.Redirect(w, r, "/verify/"+u.Username, http.StatusSeeOther)
}

// VerifyForm answers the GET side of email capture with the state the client
// needs to render it.
func (h *Handler) VerifyForm(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	writeJSON(w, http.StatusOK, map[string]string{
		"username": username,
		"step":     StepEmail.String(),
	})
}

func (h *Handler) SubmitEmail(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	emailAddr := r.FormValue("email")

	issued, err := h.flow.SubmitEmail(r.Context(), username, emailAddr)
	switch {
	case errors.Is(err, infrastructure.ErrUserNotFound):
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	case errors.Is(err, ErrAlreadyOnboarded):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case err != nil:
		h.writeError(w, err)
		return
	}

	h.setAuthCookies(w, issued)
	http.Redirect(w, r, "/send-onboard-email/"+username, http.StatusSeeOther)
}

func (h *Handler) SendOnboard(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	err := h.flow.SendOnboard(r.Context(), username)
	switch {
	case errors.Is(err, ErrEmailRequired):
		http.Redirect(w, r, "/verify/"+username, http.StatusSeeOther)
		return
	case err != nil:
		h.writeError(w, err)
		return
	}

	http.Redirect(w, r, "/send-code-auth/"+username, http.StatusSeeOther)
}

func (h *Handler) DispatchChallenge(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	sessionID := h.sessionID(r)

	err := h.flow.DispatchChallenge(r.Context(), username, sessionID)
	switch {
	case errors.Is(err, ErrAlreadyVerified):
		http.Redirect(w, r, h.homeURL, http.StatusSeeOther)
		return
	case errors.Is(err, ErrEmailRequired):
		http.Redirect(w, r, "/verify/"+username, http.StatusSeeOther)
		return
	case errors.Is(err, ErrNotActive):
		http.Redirect(w, r, "/send-onboard-email/"+username, http.StatusSeeOther)
		return
	case err != nil:
		h.writeError(w, err)
		return
	}

	http.Redirect(w, r, "/authorize/"+username, http.StatusSeeOther)
}

// Authorize is the routing hub: it sends the account to whichever stage is
// still incomplete.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	u, step, err := h.flow.Status(r.Context(), username)
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch step {
	case StepEmail:
		http.Redirect(w, r, "/verify/"+username, http.StatusSeeOther)
	case StepOnboard:
		http.Redirect(w, r, "/send-onboard-email/"+username, http.StatusSeeOther)
	case StepChallenge:
		if u.Shortcode.Valid {
			writeJSON(w, http.StatusOK, map[string]string{
				"username": username,
				"step":     step.String(),
				"awaiting": "shortcode",
			})
			return
		}
		if u.AuthLinkRoute.Valid {
			writeJSON(w, http.StatusOK, map[string]string{
				"username": username,
				"step":     step.String(),
				"awaiting": "link",
			})
			return
		}
		http.Redirect(w, r, "/send-code-auth/"+username, http.StatusSeeOther)
	default:
		http.Redirect(w, r, h.homeURL, http.StatusSeeOther)
	}
}

func (h *Handler) SubmitShortcode(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	candidate := r.FormValue("shortcode")

	sessionID := h.sessionID(r)
	if sessionID == uuid.Nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	res, issued, err := h.flow.SubmitShortcode(r.Context(), username, sessionID, candidate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch res.Outcome {
	case shortcode.Success:
		h.setAuthCookies(w, issued)
		http.Redirect(w, r, "/authorize/"+username, http.StatusSeeOther)
	case shortcode.Retry:
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error":         "incorrect shortcode",
			"attempts_left": res.AttemptsLeft,
		})
	case shortcode.Exhausted:
		writeJSON(w, http.StatusGone, map[string]interface{}{
			"error": "challenge exhausted, request a new code",
		})
	}
}

// VisitAuthLink resolves a mailed auth link. The response is identical for
// matching and non-matching routes so the link is not an oracle.
func (h *Handler) VisitAuthLink(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	username, route := vars["username"], vars["route"]

	if err := h.flow.VisitAuthLink(r.Context(), username, route); err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	remember := r.FormValue("remember") == "on" || r.FormValue("remember") == "true"

	result, err := h.flow.Login(r.Context(), username, password, remember)
	switch {
	case errors.Is(err, infrastructure.ErrUserNotFound):
		// Matches the historical behavior: unknown usernames land on
		// registration.
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	case errors.Is(err, infrastructure.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "Please check your login details and try again.",
		})
		return
	case err != nil:
		h.writeError(w, err)
		return
	}

	h.setAuthCookies(w, &result.Issued)

	switch result.Step {
	case StepEmail:
		http.Redirect(w, r, "/verify/"+username, http.StatusSeeOther)
	case StepOnboard:
		http.Redirect(w, r, "/send-onboard-email/"+username, http.StatusSeeOther)
	case StepChallenge:
		http.Redirect(w, r, "/authorize/"+username, http.StatusSeeOther)
	default:
		http.Redirect(w, r, h.homeURL, http.StatusSeeOther)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := h.sessionID(r); sessionID != uuid.Nil {
		if err := h.flow.Logout(r.Context(), sessionID); err != nil {
			h.writeError(w, err)
			return
		}
	}

	h.clearAuthCookies(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) sessionID(r *http.Request) uuid.UUID {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, issued *Issued) {
	maxAge := int(h.bearer.TTL() / time.Second)
	http.SetCookie(w, &http.Cookie{
		Name:     BearerCookie,
		Value:    issued.Bearer,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    issued.Session.ID.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{BearerCookie, SessionCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}

// writeError maps flow errors onto the HTTP taxonomy. Anything unrecognized
// fails closed with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, infrastructure.ErrDuplicateUsername),
		errors.Is(err, infrastructure.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, infrastructure.ErrInvalidEmail),
		errors.Is(err, infrastructure.ErrWeakPassword),
		errors.Is(err, infrastructure.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, infrastructure.ErrUserNotFound),
		errors.Is(err, infrastructure.ErrChallengeNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, infrastructure.ErrChallengeExhausted):
		writeJSON(w, http.StatusGone, map[string]string{"error": err.Error()})
	case errors.Is(err, infrastructure.ErrMailDelivery):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "could not deliver mail, please try again",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "something went wrong",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
