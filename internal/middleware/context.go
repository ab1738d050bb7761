package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeySession ctxKey = "session"
	ctxKeyLocale  ctxKey = "locale"
)

// LocaleInfo describes the locale resolved for the current request.
type LocaleInfo struct {
	// Lang is the resolved locale code.
	Lang string
	// PathEmbedded reports whether the locale arrived as a path prefix, in
	// which case built links must re-apply it.
	PathEmbedded bool
}

// WithLocale stores the resolved locale in context.
func WithLocale(ctx context.Context, info LocaleInfo) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, info)
}

// LocaleFromContext returns the resolved locale, zero when absent.
func LocaleFromContext(ctx context.Context) LocaleInfo {
	if v, ok := ctx.Value(ctxKeyLocale).(LocaleInfo); ok {
		return v
	}
	return LocaleInfo{}
}
