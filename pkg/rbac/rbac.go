// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/middleware"
	"github.com/shashiranjanraj/kapee/pkg/response"
)

// HasRole allows access only to users holding one of roles. It must run after
// Authenticator.Required; a missing identity yields 401, a wrong role 403.
// The role comes from the user record loaded for this request, not from the
// token claims.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := middleware.UserFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}
			if !allowed[user.Role] {
				response.Forbidden(w, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Admin is HasRole(models.RoleAdmin).
func Admin(next http.Handler) http.Handler {
	return HasRole(models.RoleAdmin)(next)
}
