package ai

import (
	"errors"
	"fmt"
)

// TransportErrorKind classifies a failed provider call.
type TransportErrorKind string

const (
	// KindNetwork means the request never produced an HTTP response.
	KindNetwork TransportErrorKind = "network_error"
	// KindTimeout means the request deadline expired.
	KindTimeout TransportErrorKind = "timeout"
	// KindUpstreamStatus means the provider answered with a non-2xx status
	// or with a body that carries no usable reply.
	KindUpstreamStatus TransportErrorKind = "upstream_status"
)

// Sentinels matched by *TransportError through errors.Is.
var (
	ErrNetwork        = errors.New("network error")
	ErrTimeout        = errors.New("request timed out")
	ErrUpstreamStatus = errors.New("upstream status")
)

// TransportError is a failed provider call. StatusCode and Body are set for
// KindUpstreamStatus only.
type TransportError struct {
	Kind       TransportErrorKind
	StatusCode int
	Body       string
	Err        error
}

// NetworkError wraps a connection level failure.
func NetworkError(err error) *TransportError {
	return &TransportError{Kind: KindNetwork, Err: err}
}

// Timeout wraps a deadline failure.
func Timeout(err error) *TransportError {
	return &TransportError{Kind: KindTimeout, Err: err}
}

// UpstreamStatus reports a non-2xx answer. body is kept as returned, or
// rendered to text when it was an HTML page.
func UpstreamStatus(code int, body string) *TransportError {
	return &TransportError{Kind: KindUpstreamStatus, StatusCode: code, Body: body}
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindUpstreamStatus:
		if e.Err != nil {
			return fmt.Sprintf("upstream status %d: %v", e.StatusCode, e.Err)
		}
		return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
	case KindTimeout:
		return fmt.Sprintf("request timed out: %v", e.Err)
	default:
		return fmt.Sprintf("network error: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *TransportError) Is(target error) bool {
	switch e.Kind {
	case KindNetwork:
		return target == ErrNetwork
	case KindTimeout:
		return target == ErrTimeout
	case KindUpstreamStatus:
		return target == ErrUpstreamStatus
	}
	return false
}
