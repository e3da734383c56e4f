package gateway

import (
	"context"
	"strings"
)

type ctxKey struct{}

// WithAccessToken attaches the delegated access token forwarded to the backend.
func WithAccessToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, token)
}

// AccessTokenFromContext returns the token set by WithAccessToken.
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(ctxKey{}).(string)
	return v, ok && v != ""
}
