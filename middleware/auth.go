package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ewaste-pickup/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// AuthMiddleware verifies the bearer token and attaches its claims to the
// request context. A missing token is 401; a token that does not verify is 403.
func AuthMiddleware(verifier TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) < 2 {
				utils.RespondMessage(w, http.StatusUnauthorized, "No token provided")
				return
			}
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.RespondMessage(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				LoggerFromContext(r.Context()).Debug("token rejected")
				utils.RespondMessage(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the claims stored by AuthMiddleware.
func UserFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}

// WithUser returns a copy of ctx carrying claims.
func WithUser(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}
