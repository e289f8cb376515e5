package ctxutil

import "context"

type traceDataKey struct{}

// TraceData correlates one request's log lines with the trace headers
// echoed back to the client.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) (TraceData, bool) {
	td, ok := ctx.Value(traceDataKey{}).(TraceData)
	return td, ok
}
