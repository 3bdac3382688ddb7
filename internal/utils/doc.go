// Package utils provides shared low-level helpers: the JSON POST helper used
// by model providers, with transport error classification and readable error
// bodies, plus string helpers for log output.
//
// Key entry points: [DoPostSync] for synchronous JSON round-trips,
// [ReadableBody] for upstream error pages and [TruncateString] for log-safe
// previews.
package utils
