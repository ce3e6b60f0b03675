package middleware

import "context"

type contextKey string

const (
	ctxUsername contextKey = "username"
	ctxIsAdmin  contextKey = "is_admin"
)

func UsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUsername).(string); ok {
		return v
	}
	return ""
}

func IsAdminFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxIsAdmin).(bool); ok {
		return v
	}
	return false
}

// WithIdentity injects the authenticated identity into the context.
func WithIdentity(ctx context.Context, username string, isAdmin bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUsername, username)
	return context.WithValue(ctx, ctxIsAdmin, isAdmin)
}
