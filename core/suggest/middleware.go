package suggest

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/leofalp/agentswarm/internal/utils"
	"github.com/leofalp/agentswarm/providers/ai"
	"github.com/leofalp/agentswarm/providers/observability"
)

// SendFunc sends one chat request to the model. It is the unit threaded
// through the middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware wraps the next SendFunc. The first middleware given to the
// service is the outermost one.
type Middleware func(next SendFunc) SendFunc

// buildSendChain wraps provider.SendMessage with middlewares, applied in
// reverse so that middlewares[0] runs first.
func buildSendChain(provider ai.Provider, middlewares []Middleware) SendFunc {
	var chain SendFunc = func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return provider.SendMessage(ctx, request)
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			chain = middlewares[i](chain)
		}
	}
	return chain
}

// NewObservabilityMiddleware opens an llm.request span around each model
// call, counts calls by transport failure class and records their latency.
// The span and observer are put in the context for the provider.
func NewObservabilityMiddleware(observer observability.Provider, defaultModel string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := request.Model
			if model == "" {
				model = defaultModel
			}

			ctx, span := observer.StartSpan(ctx, observability.SpanLLMRequest,
				observability.String(observability.AttrLLMModel, model),
			)
			defer span.End()
			ctx = observability.ContextWithObserver(ctx, observer)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			observer.Histogram(observability.MetricLLMRequestDuration).Record(ctx, elapsed.Seconds())
			observer.Counter(observability.MetricLLMRequests).Add(ctx, 1,
				observability.String(observability.AttrLLMTransportError, transportLabel(err)),
			)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, "llm request failed")
				observer.Error(ctx, "llm request failed",
					observability.String(observability.AttrLLMModel, model),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.Error(err),
				)
				return nil, err
			}

			span.SetStatus(observability.StatusOK, "")
			attrs := []observability.Attribute{
				observability.String(observability.AttrLLMModel, model),
				observability.String(observability.AttrLLMFinishReason, response.FinishReason),
				observability.Duration(observability.AttrDuration, elapsed),
				observability.String("response", utils.Preview(response.Content)),
			}
			if response.Usage != nil {
				attrs = append(attrs,
					observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
					observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
				)
			}
			observer.Info(ctx, "llm request completed", attrs...)
			return response, nil
		}
	}
}

// transportLabel is the counter label for err: the transport kind, "none"
// on success and "other" for anything else.
func transportLabel(err error) string {
	if err == nil {
		return "none"
	}
	var transport *ai.TransportError
	if errors.As(err, &transport) {
		return string(transport.Kind)
	}
	return "other"
}

// NewRateLimitMiddleware blocks each call until limiter admits it. A wait
// aborted by the context is classified like a failed round trip.
func NewRateLimitMiddleware(limiter *rate.Limiter) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			if err := limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return nil, utils.ClassifyTransportError(ctx, ctx.Err())
				}
				// The deadline is shorter than the wait.
				return nil, ai.Timeout(err)
			}
			return next(ctx, request)
		}
	}
}
