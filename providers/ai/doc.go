// Package ai defines the shared, provider-agnostic types used by model
// provider implementations. Each provider's conversion layer maps these
// types to its own wire format, keeping the rest of the codebase decoupled
// from provider-specific details.
//
// Request data flows through [ChatRequest] and responses come back as
// [ChatResponse]. Failed calls surface as [*TransportError], one of
// network error, timeout or upstream status.
package ai
