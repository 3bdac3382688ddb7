package suggest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/leofalp/agentswarm/internal/utils"
	"github.com/leofalp/agentswarm/providers/ai"
	"github.com/leofalp/agentswarm/providers/observability"
)

// ErrRetryExhausted wraps the last error once every retry failed.
var ErrRetryExhausted = errors.New("model call retries exhausted")

// RetryConfig tunes the retry middleware. Zero fields take the defaults
// noted on each field.
type RetryConfig struct {
	// MaxRetries counts attempts after the first one. Default: 3.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed wait. Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor grows the wait per attempt. Default: 2.
	BackoffFactor float64

	// JitterFraction adds up to this share of the wait at random.
	// Default: 0.1.
	JitterFraction float64

	// Retryable reports whether err is worth another attempt. Default:
	// IsRetryable.
	Retryable func(error) bool
}

func (c *RetryConfig) applyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = 2
	}
	if c.JitterFraction == 0 {
		c.JitterFraction = 0.1
	}
	if c.Retryable == nil {
		c.Retryable = IsRetryable
	}
}

// backoff returns the wait before retry number attempt (0-indexed):
// min(InitialBackoff * BackoffFactor^attempt, MaxBackoff) plus jitter.
func (c RetryConfig) backoff(attempt int) time.Duration {
	base := float64(c.InitialBackoff) * math.Pow(c.BackoffFactor, float64(attempt))
	if base > float64(c.MaxBackoff) {
		base = float64(c.MaxBackoff)
	}
	jitter := base * c.JitterFraction * rand.Float64() //nolint:gosec // jitter needs no crypto
	return time.Duration(base + jitter)
}

// IsRetryable reports transient transport failures: network errors,
// timeouts and the upstream statuses 429, 500, 502, 503 and 529.
// Unusable 502 replies without a body are not retried.
func IsRetryable(err error) bool {
	var transport *ai.TransportError
	if !errors.As(err, &transport) {
		return false
	}
	switch transport.Kind {
	case ai.KindNetwork, ai.KindTimeout:
		return true
	}
	switch transport.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusServiceUnavailable, 529:
		return true
	case http.StatusBadGateway:
		return transport.Body != ""
	}
	return false
}

// NewRetryMiddleware retries failed model calls with exponential backoff.
// Non-retryable errors pass through at once. After the last attempt the
// error wraps both ErrRetryExhausted and the last failure.
func NewRetryMiddleware(config RetryConfig) Middleware {
	config.applyDefaults()

	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			var lastErr error

			for attempt := 0; attempt <= config.MaxRetries; attempt++ {
				if attempt > 0 {
					wait := config.backoff(attempt - 1)
					if observer := observability.ObserverFromContext(ctx); observer != nil {
						observer.Warn(ctx, "retrying model call",
							observability.Int("attempt", attempt),
							observability.Duration("backoff", wait),
							observability.Error(lastErr),
						)
					}
					timer := time.NewTimer(wait)
					select {
					case <-ctx.Done():
						timer.Stop()
						return nil, utils.ClassifyTransportError(ctx, ctx.Err())
					case <-timer.C:
					}
				}

				response, err := next(ctx, request)
				if err == nil {
					return response, nil
				}
				lastErr = err

				if !config.Retryable(err) {
					return nil, err
				}
			}

			return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
		}
	}
}

// NewTimeoutMiddleware bounds each call with a deadline. A shorter deadline
// already on the context wins.
func NewTimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, request)
		}
	}
}
