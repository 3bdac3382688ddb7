package recovery

import (
	"context"
	"time"

	"github.com/leofalp/agentswarm/providers/observability"
)

// Recover runs the full pipeline over one model reply:
//
//	normalize -> strict parse -> heuristic repair -> parse
//	          -> truncation repair -> parse -> validate
//
// Each escalation happens at most once, so the pipeline runs in time linear
// in the reply. The result depends only on raw and schema.
func Recover(raw string, schema Schema) Outcome {
	span, err := Normalize(raw)
	if err != nil {
		return Outcome{Failure: noArrayFound()}
	}

	candidate := Candidate{Text: span.Text(raw), Stage: StageNormalize}
	value, stage, failure := parseWithEscalation(candidate)
	if failure != nil {
		return Outcome{Failure: failure}
	}

	records, err := Validate(value, schema)
	if err != nil {
		return Outcome{Failure: err.(*FailureReport)}
	}
	return Outcome{Records: records, Stage: stage}
}

// parseWithEscalation tries the strict parse, then the heuristic repair,
// then the truncation repair, handing each candidate to ParseStrict once.
func parseWithEscalation(candidate Candidate) (any, Stage, *FailureReport) {
	attempts := make([]Attempt, 0, 3)
	// Attempts are tagged with the parse stage, not the stage that
	// produced the candidate text.
	record := func(stage Stage, c Candidate, err error) {
		a := Attempt{Stage: stage, Bytes: len(c.Text)}
		if err != nil {
			a.Error = err.(*SyntaxError)
		}
		attempts = append(attempts, a)
	}

	value, err := ParseStrict(candidate.Text, StageStrict)
	record(StageStrict, candidate, err)
	if err == nil {
		return value, StageStrict, nil
	}

	repaired := Candidate{Text: Repair(candidate.Text), Stage: StageHeuristic}
	value, err = ParseStrict(repaired.Text, StageHeuristic)
	record(StageHeuristic, repaired, err)
	if err == nil {
		return value, StageHeuristic, nil
	}
	second := err.(*SyntaxError)

	rebuilt, terr := RecoverTruncation(repaired.Text)
	if terr != nil {
		return nil, "", unrecoverable(second, repaired.Text, terr.Error(), attempts)
	}

	truncated := Candidate{Text: rebuilt, Stage: StageTruncation}
	value, err = ParseStrict(truncated.Text, StageTruncation)
	record(StageTruncation, truncated, err)
	if err != nil {
		return nil, "", unrecoverable(err.(*SyntaxError), repaired.Text, "reconstructed text does not parse", attempts)
	}
	return value, StageTruncation, nil
}

// Sink persists the report of a reply that could not be recovered, keyed by
// a caller-supplied correlation id.
type Sink interface {
	Persist(ctx context.Context, correlationID string, report *FailureReport) error
}

// Pipeline wraps Recover with a fixed schema, observability and an optional
// diagnostic sink. It holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	schema   Schema
	observer observability.Provider
	sink     Sink
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver reports spans, outcome counters and durations to observer.
func WithObserver(observer observability.Provider) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

// WithSink persists unrecoverable replies to sink.
func WithSink(sink Sink) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// NewPipeline returns a Pipeline validating against schema.
func NewPipeline(schema Schema, opts ...Option) *Pipeline {
	p := &Pipeline{schema: schema}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Schema returns the schema records are validated against.
func (p *Pipeline) Schema() Schema {
	return p.schema
}

// Recover runs the pipeline over raw. correlationID keys any diagnostics
// persisted for the call. A sink failure is logged and never changes the
// outcome.
func (p *Pipeline) Recover(ctx context.Context, correlationID, raw string) Outcome {
	observer := p.observer
	if observer == nil {
		observer = observability.ObserverFromContext(ctx)
	}

	var span observability.Span
	if observer != nil {
		ctx, span = observer.StartSpan(ctx, observability.SpanRecovery,
			observability.String(observability.AttrCorrelationID, correlationID),
			observability.Int(observability.AttrRecoveryReplyBytes, len(raw)),
		)
		defer span.End()
	}

	start := time.Now()
	outcome := Recover(raw, p.schema)
	elapsed := time.Since(start)

	if observer != nil {
		p.report(ctx, observer, span, correlationID, outcome, elapsed)
	}

	if outcome.Failure != nil && outcome.Failure.Kind == FailureUnrecoverable && p.sink != nil {
		if err := p.sink.Persist(ctx, correlationID, outcome.Failure); err != nil && observer != nil {
			observer.Warn(ctx, "failed to persist recovery diagnostics",
				observability.String(observability.AttrCorrelationID, correlationID),
				observability.Error(err),
			)
		}
	}
	return outcome
}

func (p *Pipeline) report(ctx context.Context, observer observability.Provider, span observability.Span, correlationID string, outcome Outcome, elapsed time.Duration) {
	observer.Histogram(observability.MetricRecoveryDuration).Record(ctx, elapsed.Seconds())

	if outcome.OK() {
		observer.Counter(observability.MetricRecoveryOutcomes).Add(ctx, 1,
			observability.String(observability.AttrRecoveryResult, "success"),
			observability.String(observability.AttrRecoveryStage, string(outcome.Stage)),
		)
		span.SetAttributes(
			observability.String(observability.AttrRecoveryStage, string(outcome.Stage)),
			observability.Int(observability.AttrRecoveryRecords, len(outcome.Records)),
		)
		span.SetStatus(observability.StatusOK, "")
		if outcome.Stage != StageStrict {
			observer.Info(ctx, "reply recovered after repair",
				observability.String(observability.AttrCorrelationID, correlationID),
				observability.String(observability.AttrRecoveryStage, string(outcome.Stage)),
				observability.Int(observability.AttrRecoveryRecords, len(outcome.Records)),
			)
		}
		return
	}

	failure := outcome.Failure
	observer.Counter(observability.MetricRecoveryOutcomes).Add(ctx, 1,
		observability.String(observability.AttrRecoveryResult, string(failure.Kind)),
		observability.String(observability.AttrRecoveryStage, string(failure.Stage)),
	)
	span.RecordError(failure)
	span.SetStatus(observability.StatusError, string(failure.Kind))
	observer.Error(ctx, "reply could not be turned into records",
		observability.String(observability.AttrCorrelationID, correlationID),
		observability.String(observability.AttrRecoveryFailure, string(failure.Kind)),
		observability.String(observability.AttrRecoveryStage, string(failure.Stage)),
		observability.Error(failure),
	)
}
