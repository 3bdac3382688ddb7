package diagnostics

import (
	"context"
	"errors"

	"github.com/leofalp/agentswarm/core/recovery"
)

// MultiSink persists to every sink and joins their errors. A failing sink
// does not stop the others.
type MultiSink []recovery.Sink

func (m MultiSink) Persist(ctx context.Context, correlationID string, report *recovery.FailureReport) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Persist(ctx, correlationID, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Persist(context.Context, string, *recovery.FailureReport) error {
	return nil
}

// Combine returns nil for no sinks, the sink itself for one, and a
// MultiSink otherwise. Nil sinks are skipped.
func Combine(sinks ...recovery.Sink) recovery.Sink {
	var kept MultiSink
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return kept
}
