package logger

import "context"

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey string

const (
	keyTraceID   contextKey = "trace_id"
	keySpanID    contextKey = "span_id"
	keyRequestID contextKey = "request_id"
)

// WithRequestID returns a context carrying id as the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// RequestIDFromContext returns the request ID stored on ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// WithTrace returns a context carrying trace and span IDs for log correlation.
func WithTrace(ctx context.Context, traceID, spanID string) context.Context {
	ctx = context.WithValue(ctx, keyTraceID, traceID)
	return context.WithValue(ctx, keySpanID, spanID)
}
