package suggest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/leofalp/agentswarm/core/agentspec"
	"github.com/leofalp/agentswarm/core/recovery"
	"github.com/leofalp/agentswarm/prompts"
	"github.com/leofalp/agentswarm/providers/ai"
	"github.com/leofalp/agentswarm/providers/ai/anthropic"
	"github.com/leofalp/agentswarm/providers/observability"
)

// Result is a successful suggestion.
type Result struct {
	Agents        []agentspec.AgentSpecification `json:"agents"`
	Stage         recovery.Stage                 `json:"stage"`
	CorrelationID string                         `json:"correlation_id"`
	Usage         *ai.Usage                      `json:"usage,omitempty"`
	// Truncated is set when the model hit its token limit and the list was
	// rebuilt from the complete elements.
	Truncated bool `json:"truncated,omitempty"`
}

// Service suggests agents for an empire. It is safe for concurrent use.
type Service struct {
	provider    ai.Provider
	model       string
	maxTokens   int
	prompt      string
	observer    observability.Provider
	sink        recovery.Sink
	limiter     *rate.Limiter
	retry       *RetryConfig
	timeout     time.Duration
	middlewares []Middleware

	send     SendFunc
	pipeline *recovery.Pipeline
}

// Option configures a Service.
type Option func(*Service)

// WithModel sets the model requested from the provider.
func WithModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// WithMaxTokens sets the reply token limit.
func WithMaxTokens(maxTokens int) Option {
	return func(s *Service) {
		if maxTokens > 0 {
			s.maxTokens = maxTokens
		}
	}
}

// WithPrompt replaces the embedded master prompt.
func WithPrompt(prompt string) Option {
	return func(s *Service) {
		if prompt != "" {
			s.prompt = prompt
		}
	}
}

// WithObserver enables spans, metrics and logs for model calls and
// recovery runs.
func WithObserver(observer observability.Provider) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// WithSink persists unrecoverable replies.
func WithSink(sink recovery.Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithRateLimit allows at most perSecond model calls per second with the
// given burst. A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Service) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRetry retries transient transport failures. Each attempt waits for
// the rate limiter again.
func WithRetry(config RetryConfig) Option {
	return func(s *Service) {
		s.retry = &config
	}
}

// WithRequestTimeout bounds each model call attempt.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithMiddleware appends middlewares around the provider call. They run
// inside the built-in middlewares.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(s *Service) {
		s.middlewares = append(s.middlewares, middlewares...)
	}
}

// New returns a Service calling provider.
func New(provider ai.Provider, opts ...Option) *Service {
	s := &Service{
		provider:  provider,
		model:     anthropic.DefaultModel,
		maxTokens: anthropic.DefaultMaxTokens,
		prompt:    prompts.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// observability -> retry -> rate limit -> timeout -> custom -> provider
	chain := make([]Middleware, 0, len(s.middlewares)+4)
	if s.observer != nil {
		chain = append(chain, NewObservabilityMiddleware(s.observer, s.model))
	}
	if s.retry != nil {
		chain = append(chain, NewRetryMiddleware(*s.retry))
	}
	if s.limiter != nil {
		chain = append(chain, NewRateLimitMiddleware(s.limiter))
	}
	if s.timeout > 0 {
		chain = append(chain, NewTimeoutMiddleware(s.timeout))
	}
	chain = append(chain, s.middlewares...)
	s.send = buildSendChain(provider, chain)

	pipelineOpts := []recovery.Option{}
	if s.observer != nil {
		pipelineOpts = append(pipelineOpts, recovery.WithObserver(s.observer))
	}
	if s.sink != nil {
		pipelineOpts = append(pipelineOpts, recovery.WithSink(s.sink))
	}
	s.pipeline = recovery.NewPipeline(agentspec.Schema, pipelineOpts...)
	return s
}

// SuggestAgents validates description, asks the model for agent
// specifications and recovers them from the reply. Failures are *Error.
func (s *Service) SuggestAgents(ctx context.Context, description agentspec.EmpireDescription) (*Result, error) {
	return s.suggest(ctx, description.EmpireName, &description, description.Validate)
}

// SuggestAgentsExtended is SuggestAgents for the extended description,
// which is rendered into the prompt as sent.
func (s *Service) SuggestAgentsExtended(ctx context.Context, description agentspec.ExtendedEmpireDescription) (*Result, error) {
	return s.suggest(ctx, description.Name(), &description, description.Validate)
}

// Recover runs the recovery pipeline on a reply obtained elsewhere.
func (s *Service) Recover(ctx context.Context, correlationID, raw string) (*Result, error) {
	ctx, correlationID = withCorrelationID(ctx, correlationID)
	outcome := s.pipeline.Recover(ctx, correlationID, raw)
	if !outcome.OK() {
		return nil, classify(ctx, correlationID, outcome.Err())
	}
	return &Result{
		Agents:        agentspec.FromRecords(outcome.Records),
		Stage:         outcome.Stage,
		CorrelationID: correlationID,
	}, nil
}

func (s *Service) suggest(ctx context.Context, empire string, description any, validate func() error) (result *Result, err error) {
	ctx, correlationID := withCorrelationID(ctx, observability.CorrelationIDFromContext(ctx))

	if s.observer != nil {
		var span observability.Span
		ctx, span = s.observer.StartSpan(ctx, observability.SpanSuggestAgents,
			observability.String(observability.AttrCorrelationID, correlationID),
		)
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, err.Error())
			} else {
				span.SetStatus(observability.StatusOK, "")
			}
			span.End()
		}()
	}

	if err := validate(); err != nil {
		return nil, classify(ctx, correlationID, err)
	}

	prompt, err := prompts.Render(s.prompt, description)
	if err != nil {
		return nil, &Error{Kind: KindInternal, CorrelationID: correlationID, Err: err}
	}

	s.logInfo(ctx, "requesting agent suggestions", observability.String("empire", empire))

	response, err := s.send(ctx, ai.ChatRequest{
		Model:            s.model,
		Messages:         []ai.Message{ai.UserMessage(prompt)},
		GenerationConfig: &ai.GenerationConfig{MaxTokens: s.maxTokens},
	})
	if err != nil {
		return nil, classify(ctx, correlationID, err)
	}

	if response.Truncated() {
		s.logWarn(ctx, "model reply hit the token limit",
			observability.Int(observability.AttrLLMMaxTokens, s.maxTokens),
			observability.Int(observability.AttrRecoveryReplyBytes, len(response.Content)),
		)
	}

	outcome := s.pipeline.Recover(ctx, correlationID, response.Content)
	if !outcome.OK() {
		return nil, classify(ctx, correlationID, outcome.Err())
	}

	return &Result{
		Agents:        agentspec.FromRecords(outcome.Records),
		Stage:         outcome.Stage,
		CorrelationID: correlationID,
		Usage:         response.Usage,
		Truncated:     response.Truncated() || outcome.Stage == recovery.StageTruncation,
	}, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if s.observer != nil {
		s.observer.Info(ctx, msg, attrs...)
	}
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if s.observer != nil {
		s.observer.Warn(ctx, msg, attrs...)
	}
}

// withCorrelationID stores id in ctx, generating one when empty.
func withCorrelationID(ctx context.Context, id string) (context.Context, string) {
	if id == "" {
		id = uuid.NewString()
	}
	return observability.ContextWithCorrelationID(ctx, id), id
}
