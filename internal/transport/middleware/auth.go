package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/auth"
	"github.com/frahmantamala/attendance-engine/internal/transport"
	"github.com/frahmantamala/attendance-engine/pkg/logger"
)

type TokenVerifier interface {
	Verify(token string) (*auth.AdminClaims, error)
}

// AdminAuth requires a valid bearer token and stores its claims and subject
// in the request context.
func AdminAuth(verifier TokenVerifier, lg *slog.Logger) func(http.Handler) http.Handler {
	h := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := h.ExtractTokenFromHeader(r)
			if token == "" {
				h.HandleServiceError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				code := internal.ErrCodeInvalidToken
				if errors.Is(err, auth.ErrTokenExpired) {
					code = internal.ErrCodeTokenExpired
				}
				h.HandleServiceError(w, internal.NewUnauthorizedError(err.Error(), code))
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			ctx = internal.ContextWithAdminID(ctx, claims.Subject)
			ctx = logger.With(ctx, "admin_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
