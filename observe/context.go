package observe

import "context"

// CorrelationIDField is the log field carrying the request correlation id.
const CorrelationIDField = "x_correlation_id"

type contextKey int

const correlationIDKey contextKey = iota

// WithCorrelationID returns a context carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the correlation id carried by ctx, or "".
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}
