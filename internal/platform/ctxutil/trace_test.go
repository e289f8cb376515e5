package ctxutil

import (
	"context"
	"testing"
)

func TestTraceDataRoundTrip(t *testing.T) {
	ctx := WithTraceData(context.Background(), TraceData{TraceID: "t-1", RequestID: "r-1"})
	td, ok := GetTraceData(ctx)
	if !ok {
		t.Fatal("expected trace data on the context")
	}
	if td.TraceID != "t-1" || td.RequestID != "r-1" {
		t.Fatalf("unexpected trace data: %+v", td)
	}
}

func TestTraceDataAbsent(t *testing.T) {
	if _, ok := GetTraceData(context.Background()); ok {
		t.Fatal("bare context must carry no trace data")
	}
}
