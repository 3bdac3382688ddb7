package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestChatResponse_Truncated(t *testing.T) {
	tests := []struct {
		name string
		resp *ChatResponse
		want bool
	}{
		{"nil", nil, false},
		{"stop", &ChatResponse{FinishReason: FinishReasonStop}, false},
		{"length", &ChatResponse{FinishReason: FinishReasonLength}, true},
		{"unset", &ChatResponse{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Truncated(); got != tt.want {
				t.Errorf("Truncated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	m := UserMessage("hi")
	if m.Role != RoleUser || m.Content != "hi" {
		t.Errorf("unexpected message %+v", m)
	}
}

func TestTransportError_Kinds(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name     string
		err      *TransportError
		sentinel error
		others   []error
		wantMsg  string
	}{
		{
			name:     "network",
			err:      NetworkError(cause),
			sentinel: ErrNetwork,
			others:   []error{ErrTimeout, ErrUpstreamStatus},
			wantMsg:  "network error: dial tcp: connection refused",
		},
		{
			name:     "timeout",
			err:      Timeout(context.DeadlineExceeded),
			sentinel: ErrTimeout,
			others:   []error{ErrNetwork, ErrUpstreamStatus},
			wantMsg:  "request timed out: context deadline exceeded",
		},
		{
			name:     "upstream",
			err:      UpstreamStatus(529, `{"error":"overloaded"}`),
			sentinel: ErrUpstreamStatus,
			others:   []error{ErrNetwork, ErrTimeout},
			wantMsg:  `upstream status 529: {"error":"overloaded"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("calling model: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v) = false", tt.sentinel)
			}
			for _, other := range tt.others {
				if errors.Is(wrapped, other) {
					t.Errorf("errors.Is(%v) = true, want false", other)
				}
			}
			var te *TransportError
			if !errors.As(wrapped, &te) || te.Kind != tt.err.Kind {
				t.Errorf("errors.As did not recover the transport error")
			}
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	if !errors.Is(Timeout(context.DeadlineExceeded), context.DeadlineExceeded) {
		t.Error("timeout must unwrap to its cause")
	}
}
