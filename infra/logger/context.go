package logger

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID stores a request id in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request id stored in ctx, or ""
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns a context logger tagged with the request id of ctx
func FromContext(ctx context.Context) *ContextLogger {
	return WithRequest(GetRequestID(ctx))
}
