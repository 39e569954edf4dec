// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/obra-coop/obranet/internal/api/auth"
	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/models"
	"github.com/obra-coop/obranet/internal/storage"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal returns the authenticated user stored by JWTAuth.
func Principal(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(principalKey).(*models.User)
	return user, ok
}

// JWTAuth validates the bearer token and resolves the full principal from
// storage, so downstream authorization sees current roles rather than the
// roles captured at token issue time.
func JWTAuth(jwtService *auth.JWTService, users storage.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respond.Unauthorized(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respond.Unauthorized(w)
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				log.Printf("JWT auth failed for %s: %v", r.RemoteAddr, err)
				respond.Unauthorized(w)
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				log.Printf("principal %s not resolvable: %v", claims.UserID, err)
				respond.Unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireGlobalRole rejects requests whose principal lacks the given
// global role.
func RequireGlobalRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := Principal(r.Context())
			if !ok {
				respond.Unauthorized(w)
				return
			}
			if !user.HasRole(role) && !user.IsAdmin() {
				respond.Err(w, &respond.Error{
					Code:    respond.CodeForbidden,
					Message: "access denied",
					Status:  http.StatusForbidden,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal returns a context carrying the given user as principal.
// Intended for handler tests.
func WithPrincipal(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}
