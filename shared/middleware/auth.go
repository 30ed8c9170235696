package middleware

import (
	"context"
	"net/http"

	"github.com/vasapolrittideah/showcase-api/shared/response"
)

// TokenVerifier resolves a session token to the user id it was issued for.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

type userIDKey struct{}

// Authenticate verifies the session token carried in cookieName and stores the user id in the request
// context. Requests without a cookie, or with a token the verifier rejects, get 401 and never reach next.
func Authenticate(verifier TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				response.Message(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			userID, err := verifier.VerifyToken(cookie.Value)
			if err != nil {
				response.Message(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user id stored by Authenticate.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}
