package audit

import (
	"context"
	"errors"
	"strings"

	"estatedesk.app/internal/obs"
)

type ctxKey string

const (
	requestIDKey ctxKey = "audit_request_id"
	actorKey     ctxKey = "audit_actor"
)

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithActor records who is acting and how they signed in ("local" or "oidc").
func WithActor(ctx context.Context, userID, method string) context.Context {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, [2]string{userID, method})
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func actorFromContext(ctx context.Context) (userID, method string, ok bool) {
	if ctx == nil {
		return "", "", false
	}
	v, ok := ctx.Value(actorKey).([2]string)
	return v[0], v[1], ok
}

// LogEvent writes an audit log entry enriched with request and user context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	ev := obs.Logger().Info().Str("type", "audit").Str("event", event)
	if rid := requestIDFromContext(ctx); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	if userID, method, ok := actorFromContext(ctx); ok {
		ev = ev.Str("user_id", userID).Str("auth_method", method)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	ev.Interface("fields", fields).Msg("audit")
	return nil
}
