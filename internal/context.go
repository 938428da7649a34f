package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextAdminKey   ctxKey = "adminID"
	ContextKioskIDKey ctxKey = "kioskID"
)

// AdminIDFromContext returns the subject of a validated admin token.
func AdminIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if adminID, ok := ctx.Value(ContextAdminKey).(string); ok {
		return adminID
	}
	return ""
}

func ContextWithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, ContextAdminKey, adminID)
}

func KioskIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if kioskID, ok := ctx.Value(ContextKioskIDKey).(string); ok {
		return kioskID
	}
	return ""
}

func ContextWithKioskID(ctx context.Context, kioskID string) context.Context {
	return context.WithValue(ctx, ContextKioskIDKey, kioskID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
