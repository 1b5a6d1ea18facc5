package audit

import "context"

type ctxKey struct{}

// WithUserID attaches the acting user to ctx for later audit entries.
func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the acting user, if any.
func UserIDFromContext(ctx context.Context) *string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return &id
	}
	return nil
}
