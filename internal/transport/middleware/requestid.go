package middleware

import (
	"net/http"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/pkg/logger"
	"github.com/google/uuid"
)

// RequestID attaches a trace id to the request log fields and records the
// calling kiosk, if any.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)
		if kioskID := r.Header.Get("X-Kiosk-ID"); kioskID != "" {
			ctx = internal.ContextWithKioskID(ctx, kioskID)
		}

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
