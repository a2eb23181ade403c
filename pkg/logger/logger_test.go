package logger

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextWithCorrelationID(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "test-id")
	if got := CorrelationIDFromContext(ctx); got != "test-id" {
		t.Fatalf("expected correlation ID %q, got %q", "test-id", got)
	}
}

func TestCorrelationIDFromContext_Missing(t *testing.T) {
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty correlation ID, got %q", got)
	}
}

func TestWithContextAddsCorrelationIDField(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	ctx := ContextWithCorrelationID(context.Background(), "context-id")

	WarnContext(ctx, "distance unavailable")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	if got := entries[0].ContextMap()["correlation_id"]; got != "context-id" {
		t.Fatalf("expected correlation_id %q, got %v", "context-id", got)
	}
}

func TestReplaceRestoresPreviousLogger(t *testing.T) {
	original := Get()
	core, _ := observer.New(zapcore.DebugLevel)

	restore := Replace(zap.New(core))
	if Get() == original {
		t.Fatal("expected replaced logger")
	}

	restore()
	if Get() != original {
		t.Fatal("expected original logger after restore")
	}
}

func TestInitDevelopment(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	if err := Init("development", "visit-pricing"); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if Get() == nil {
		t.Fatal("expected logger after Init")
	}
}

func TestWithContextAddsTraceID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	InfoContext(ctx, "day priced")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["trace_id"]; got != traceID.String() {
		t.Fatalf("expected trace_id %q, got %v", traceID.String(), got)
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	restore := Replace(nil)
	defer restore()
	t.Setenv("LOG_LEVEL", "loud")

	if err := Init("development", "visit-pricing"); err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}
