package middleware

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/foldax/insights-backend/services"
	"github.com/foldax/insights-backend/userctx"
)

// RequireAuth gates protected routes. It resolves the session cookie
// to a user and attaches it to the request context; requests without a
// valid session get a 401 and never reach the handler.
func RequireAuth(sessions services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.Resolve(r.Context(), sessionToken(r))
			if err != nil {
				log.Printf("session resolution failed: %v", err)
				writeUnauthorized(w)
				return
			}
			if user == nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(userctx.SetUser(r.Context(), user)))
		})
	}
}

// sessionToken extracts the session token from the request cookie,
// empty if the cookie is absent
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(services.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// writeUnauthorized answers an authentication-required failure
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not authenticated"})
}
