package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/leofalp/agentswarm/core/agentspec"
	"github.com/leofalp/agentswarm/core/recovery"
	"github.com/leofalp/agentswarm/internal/utils"
	"github.com/leofalp/agentswarm/providers/ai"
)

// ErrorKind classifies a failed suggestion.
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request"
	KindTransport      ErrorKind = "transport"
	KindRecovery       ErrorKind = "recovery"
	KindCanceled       ErrorKind = "canceled"
	KindInternal       ErrorKind = "internal"
)

// StatusClientClosedRequest is returned when the caller went away.
const StatusClientClosedRequest = 499

// Error is the single failure type of the package. Exactly one of Field,
// Transport and Failure is set for the matching kinds.
type Error struct {
	Kind ErrorKind

	// Field and Reason describe an invalid request.
	Field  string
	Reason string

	Transport *ai.TransportError
	Failure   *recovery.FailureReport

	// CorrelationID identifies the call in logs and diagnostics.
	CorrelationID string

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidRequest:
		return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
	case KindTransport:
		return fmt.Sprintf("model call failed: %v", e.Transport)
	case KindRecovery:
		return fmt.Sprintf("model reply unusable: %v", e.Failure)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	switch {
	case e.Transport != nil:
		return e.Transport
	case e.Failure != nil:
		return e.Failure
	}
	return e.Err
}

// HTTPStatus maps the error onto a response status: 422 for invalid
// requests, 503 for network errors, 504 for timeouts, the upstream status
// for provider errors and 502 when the reply could not be recovered.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidRequest:
		return http.StatusUnprocessableEntity
	case KindTransport:
		switch e.Transport.Kind {
		case ai.KindNetwork:
			return http.StatusServiceUnavailable
		case ai.KindTimeout:
			return http.StatusGatewayTimeout
		}
		if e.Transport.StatusCode >= 400 {
			return e.Transport.StatusCode
		}
		return http.StatusBadGateway
	case KindRecovery:
		return http.StatusBadGateway
	case KindCanceled:
		return StatusClientClosedRequest
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text shown to API callers. Recovery reports stay in
// the logs.
func (e *Error) PublicMessage() string {
	switch e.Kind {
	case KindInvalidRequest:
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	case KindTransport:
		switch e.Transport.Kind {
		case ai.KindNetwork:
			return "Network error when calling Claude API"
		case ai.KindTimeout:
			return "Request to Claude API timed out"
		}
		if e.Transport.Body != "" {
			return "Error from Claude API: " + utils.Preview(e.Transport.Body)
		}
		return "Claude API returned an unusable response"
	case KindRecovery:
		return "Could not produce a valid list of agent specifications from the model reply"
	case KindCanceled:
		return "Request canceled"
	}
	return "Unexpected error in Claude service"
}

// classify wraps err in an *Error. Errors that already are one pass
// through unchanged.
func classify(ctx context.Context, correlationID string, err error) *Error {
	var own *Error
	if errors.As(err, &own) {
		return own
	}

	var fieldErr *agentspec.FieldError
	if errors.As(err, &fieldErr) {
		return &Error{Kind: KindInvalidRequest, Field: fieldErr.Field, Reason: fieldErr.Reason, CorrelationID: correlationID, Err: err}
	}

	var transport *ai.TransportError
	if errors.As(err, &transport) {
		return &Error{Kind: KindTransport, Transport: transport, CorrelationID: correlationID}
	}

	var report *recovery.FailureReport
	if errors.As(err, &report) {
		return &Error{Kind: KindRecovery, Failure: report, CorrelationID: correlationID}
	}

	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return &Error{Kind: KindCanceled, CorrelationID: correlationID, Err: err}
	}
	return &Error{Kind: KindInternal, CorrelationID: correlationID, Err: err}
}
