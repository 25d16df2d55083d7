package auth

import (
	"context"
	"net/http"

	"github.com/ezzystore/ezzystore/internal/platform/httpx"
	"github.com/ezzystore/ezzystore/internal/shared"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user in context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// RequireRole gates a subtree to authenticated users carrying the role.
// The resolved user is stored in the request context for handlers.
func (s *Service) RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := s.Lookup(r.Context(), shared.UserID(r.Context()))
			if err != nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			if user.Role != role {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}
