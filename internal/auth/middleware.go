package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"doorman/pkg/jwt"
)

// RequireBearer guards routes behind a valid bearer credential. The
// credential is read from the access_token cookie, falling back to the
// Authorization header for non-browser clients. When the route names a
// username, the claims must match it (admins may cross the boundary).
func RequireBearer(validator *jwt.JWT) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if username, ok := mux.Vars(r)["username"]; ok {
				if username != claims.Username && !claims.IsAdmin {
					writeJSON(w, http.StatusForbidden, map[string]string{
						"error": "forbidden",
					})
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(jwt.NewContext(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(BearerCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}
