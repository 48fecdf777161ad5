// Package middleware holds the HTTP middleware of the layout API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/marmos91/binlayout/pkg/api/auth"
	"github.com/marmos91/binlayout/pkg/api/handlers"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// GetClaimsFromContext returns the claims stored by JWTAuth, or nil.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// JWTAuth rejects requests without a valid bearer token and stores the
// token's claims in the request context. A nil service disables the check.
func JWTAuth(svc *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if svc == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="binlayout"`)
				handlers.Unauthorized(w, "Authorization header required")
				return
			}

			claims, err := svc.Validate(token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="binlayout", error="invalid_token"`)
				handlers.Unauthorized(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope blocks requests whose token lacks scope. Requests that carry
// no claims pass, since authentication is then disabled.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims != nil && !claims.HasScope(scope) {
				handlers.Forbidden(w, "token lacks scope "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
