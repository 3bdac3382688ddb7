// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics and structured logging across agentswarm.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics],
// and [Logger] into a single injectable dependency; [Compose] assembles one
// from separate backends. Callers propagate an active [Provider], [Span] and
// request correlation id through a [context.Context] using
// [ContextWithObserver], [ContextWithSpan] and [ContextWithCorrelationID].
//
// The semconv.go file contains all attribute-key, span, event and metric
// name constants that should be used when recording observations.
package observability
