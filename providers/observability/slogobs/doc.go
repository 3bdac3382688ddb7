// Package slogobs implements observability.Provider on log/slog.
//
// Records go through a [Handler] that writes compact, pretty or JSON lines
// and stamps the request correlation id taken from the context. Spans are
// logged at DEBUG when they end, and counters keep per-series totals that
// [Observer.CounterValue] exposes. Start with [New]; the format and level
// default to AGENTSWARM_LOG_FORMAT and AGENTSWARM_LOG_LEVEL.
package slogobs
