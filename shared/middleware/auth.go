package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/threadly-dev/threadly/shared/domain"
	jwt_internal "github.com/threadly-dev/threadly/shared/jwt"
	"github.com/threadly-dev/threadly/shared/utils"
)

// Key to store the caller identity in the request context
type key int

const IdentityKey key = 0

// SessionCookie is the cookie browser clients receive from the identity provider.
const SessionCookie = "__session"

// Auth verifies identity-gateway tokens. It never issues them.
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth returns middleware that rejects requests without a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				http.Error(w, "Please sign-in", http.StatusUnauthorized)
				return
			}

			identity, err := a.jwtService.Identity(tokenString)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, &identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken prefers the Authorization header (API clients) over the cookie (browsers).
func extractToken(r *http.Request) string {
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		return strings.TrimSpace(token)
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// GetIdentityFromContext returns the verified caller, or nil outside NeedAuth.
func GetIdentityFromContext(r *http.Request) *domain.Identity {
	identity, ok := r.Context().Value(IdentityKey).(*domain.Identity)
	if !ok {
		return nil
	}
	return identity
}

// WithIdentity stores an identity the way NeedAuth does; used by tests and tools.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}
