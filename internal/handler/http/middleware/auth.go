package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
)

// AuthRequired must run after jwtauth.Verifier. It rejects requests without
// a valid access token and tags the context with the caller for audit.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			claims, err := jwtService.ClaimsFromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			ctx := audit.WithUserID(r.Context(), claims.UserID)
			ctx = withClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
