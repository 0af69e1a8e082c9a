package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Ctx retrieves the logger from the context.
// If no logger is found, the global logger is returned.
func Ctx(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}

// WithConn returns a context carrying a child logger tagged with the
// connection id and, once known, the user id.
func WithConn(ctx context.Context, connID, userID string) context.Context {
	c := Ctx(ctx).With().Str(FieldConnID, connID)
	if userID != "" {
		c = c.Str(FieldUserID, userID)
	}
	return WithLogger(ctx, c.Logger())
}
