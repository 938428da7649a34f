package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/auth"
	"github.com/frahmantamala/attendance-engine/internal/transport"
)

// RequireRole allows the request through only when the admin claims carry
// one of roles. It must run after AdminAuth.
func RequireRole(lg *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	h := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				h.HandleServiceError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			h.Logger.Warn("access denied: role not allowed",
				"admin_id", internal.AdminIDFromContext(r.Context()),
				"role", claims.Role,
				"required_roles", roles)
			h.HandleServiceError(w, internal.NewForbiddenError("insufficient permissions"))
		})
	}
}
