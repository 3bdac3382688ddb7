package observability

import (
	"context"
	"testing"
)

// testContextKey is a custom type for context keys in tests to avoid collisions.
type testContextKey string

func TestSpanFromContext_Empty(t *testing.T) {
	if span := SpanFromContext(context.Background()); span != nil {
		t.Errorf("Expected nil span from empty context, got %v", span)
	}
}

func TestContextWithSpan_RoundTrip(t *testing.T) {
	span := &mockSpan{name: "recovery"}
	ctx := ContextWithSpan(context.Background(), span)

	// Wrapping must not hide the span.
	ctx = context.WithValue(ctx, testContextKey("key"), "value")

	if got := SpanFromContext(ctx); got != span {
		t.Errorf("Expected stored span, got %v", got)
	}
}

func TestContextWithSpan_Overwrite(t *testing.T) {
	span1 := &mockSpan{name: "span-1"}
	span2 := &mockSpan{name: "span-2"}

	ctx := ContextWithSpan(context.Background(), span1)
	ctx = ContextWithSpan(ctx, span2)

	if got := SpanFromContext(ctx); got != span2 {
		t.Errorf("Expected span2, got %v", got)
	}
}

func TestSpanFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), spanContextKey, "not a span")
	if span := SpanFromContext(ctx); span != nil {
		t.Errorf("Expected nil when value is not a Span, got %v", span)
	}
}

func TestContextWithObserver_RoundTrip(t *testing.T) {
	observer := &mockProvider{label: "round-trip-observer"}
	ctx := ContextWithObserver(context.Background(), observer)

	retrieved, ok := ObserverFromContext(ctx).(*mockProvider)
	if !ok {
		t.Fatalf("Retrieved observer is not *mockProvider")
	}
	if retrieved != observer {
		t.Errorf("ObserverFromContext returned a different instance")
	}
}

func TestObserverFromContext_Missing(t *testing.T) {
	if observer := ObserverFromContext(context.Background()); observer != nil {
		t.Errorf("Expected nil from context without observer, got %v", observer)
	}
	//nolint:staticcheck // nil context is accepted
	if observer := ObserverFromContext(nil); observer != nil {
		t.Errorf("Expected nil from nil context, got %v", observer)
	}
}

func TestCorrelationID(t *testing.T) {
	if id := CorrelationIDFromContext(context.Background()); id != "" {
		t.Errorf("Expected empty correlation id, got %q", id)
	}

	ctx := ContextWithCorrelationID(context.Background(), "req-42")
	if id := CorrelationIDFromContext(ctx); id != "req-42" {
		t.Errorf("Expected req-42, got %q", id)
	}

	// Keys are distinct: a correlation id is not an observer.
	if observer := ObserverFromContext(ctx); observer != nil {
		t.Errorf("Expected no observer, got %v", observer)
	}
}

// mockSpan for testing
type mockSpan struct {
	name string
}

func (m *mockSpan) End()                                          {}
func (m *mockSpan) SetAttributes(attrs ...Attribute)              {}
func (m *mockSpan) SetStatus(code StatusCode, description string) {}
func (m *mockSpan) RecordError(err error)                         {}
func (m *mockSpan) AddEvent(name string, attrs ...Attribute)      {}

// mockProvider is a minimal Provider used for context round-trip tests.
type mockProvider struct {
	label string
}

func (m *mockProvider) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, nil
}
func (m *mockProvider) Counter(_ string) Counter                          { return nil }
func (m *mockProvider) Histogram(_ string) Histogram                      { return nil }
func (m *mockProvider) Trace(_ context.Context, _ string, _ ...Attribute) {}
func (m *mockProvider) Debug(_ context.Context, _ string, _ ...Attribute) {}
func (m *mockProvider) Info(_ context.Context, _ string, _ ...Attribute)  {}
func (m *mockProvider) Warn(_ context.Context, _ string, _ ...Attribute)  {}
func (m *mockProvider) Error(_ context.Context, _ string, _ ...Attribute) {}
