package middleware

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
)

// Roles issued by the HR application that may change payroll data.
const (
	RoleOwner        = "owner"
	RoleManager      = "manager"
	RolePayrollAdmin = "payroll_admin"
)

type claimsKey struct{}

func withClaims(ctx context.Context, c jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (jwt.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(jwt.Claims)
	return c, ok
}

// RequireRole checks the role claim set by AuthRequired.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Missing credentials")
				return
			}

			if !slices.Contains(roles, claims.Role) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: role '%s' cannot perform this action", claims.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePayrollWriter allows roles that may run and edit payroll.
func RequirePayrollWriter(next http.Handler) http.Handler {
	return RequireRole(RoleOwner, RoleManager, RolePayrollAdmin)(next)
}
