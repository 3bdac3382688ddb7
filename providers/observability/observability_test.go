package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAttributeConstructors(t *testing.T) {
	tests := []struct {
		name      string
		attr      Attribute
		wantKey   string
		wantValue interface{}
	}{
		{"string", String(AttrRecoveryStage, "strict_parse"), AttrRecoveryStage, "strict_parse"},
		{"int", Int(AttrRecoveryRecords, 3), AttrRecoveryRecords, 3},
		{"int64", Int64("offset", 9223372036854775807), "offset", int64(9223372036854775807)},
		{"float64", Float64("ratio", 0.5), "ratio", 0.5},
		{"bool", Bool("truncated", true), "truncated", true},
		{"duration", Duration(AttrDuration, 2*time.Second), AttrDuration, 2 * time.Second},
		{"error", Error(errors.New("boom")), AttrError, "boom"},
		{"nil error", Error(nil), AttrError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", tt.attr.Value, tt.wantValue)
			}
		})
	}
}

func TestStatusCode_Values(t *testing.T) {
	if StatusUnset != 0 || StatusOK != 1 || StatusError != 2 {
		t.Errorf("unexpected status code values: %d %d %d", StatusUnset, StatusOK, StatusError)
	}
}

type countingMetrics struct {
	counters []string
}

func (m *countingMetrics) Counter(name string) Counter {
	m.counters = append(m.counters, name)
	return nil
}

func (m *countingMetrics) Histogram(string) Histogram { return nil }

func TestCompose_RoutesEachConcern(t *testing.T) {
	logger := &mockProvider{label: "logger"}
	tracer := &mockProvider{label: "tracer"}
	metrics := &countingMetrics{}

	p := Compose(tracer, metrics, logger)

	p.Counter(MetricRecoveryOutcomes)
	if len(metrics.counters) != 1 || metrics.counters[0] != MetricRecoveryOutcomes {
		t.Errorf("Counter not routed to metrics backend: %v", metrics.counters)
	}

	ctx, span := p.StartSpan(context.Background(), SpanRecovery)
	if ctx == nil {
		t.Error("StartSpan returned nil context")
	}
	if span != nil {
		t.Errorf("expected tracer's nil span, got %v", span)
	}

	// Logger calls must not panic when routed.
	p.Info(context.Background(), "hello", String("k", "v"))
}
