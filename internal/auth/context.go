package auth

import (
	"context"

	"github.com/pontus/pontus/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// callerContextKey is the context key for storing the Caller.
const callerContextKey contextKey = "caller"

// ContextWithCaller adds the authenticated caller to the context.
func ContextWithCaller(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFromContext retrieves the caller from the context.
// The second return is false when the request was not authenticated.
func CallerFromContext(ctx context.Context) (model.Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(model.Caller)
	return caller, ok
}
