package anthropic

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/leofalp/agentswarm/internal/utils"
	"github.com/leofalp/agentswarm/providers/ai"
	"github.com/leofalp/agentswarm/providers/observability"
)

const (
	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	anthropicVersion = "2023-06-01"

	// DefaultModel is used when the request names no model.
	DefaultModel = "claude-sonnet-4-20250514"

	// DefaultTimeout bounds one Messages call, including reading the body.
	DefaultTimeout = 120 * time.Second
)

// ErrMissingAPIKey is returned by SendMessage when no key is configured.
var ErrMissingAPIKey = errors.New("anthropic: API key is not set")

// AnthropicProvider implements [ai.Provider] for Anthropic's Messages API.
// Use [New] to construct a ready-to-use instance.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns an [AnthropicProvider] initialized from environment variables.
// It reads CLAUDE_API_KEY (falling back to ANTHROPIC_API_KEY) and
// ANTHROPIC_API_BASE_URL. The HTTP client times out after [DefaultTimeout].
func New() *AnthropicProvider {
	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &AnthropicProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// WithAPIKey sets the API key used for authenticating requests.
func (p *AnthropicProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL, e.g. a proxy or a test server.
func (p *AnthropicProvider) WithBaseURL(baseURL string) ai.Provider {
	if baseURL != "" {
		p.baseURL = baseURL
	}
	return p
}

// WithHttpClient replaces the default [http.Client]. The caller's client
// owns the timeout.
func (p *AnthropicProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithTimeout sets the timeout of the current HTTP client.
func (p *AnthropicProvider) WithTimeout(timeout time.Duration) *AnthropicProvider {
	if p.client == nil {
		p.client = &http.Client{}
	}
	p.client.Timeout = timeout
	return p
}

// buildHeaders constructs the headers required on every request. Anthropic
// authenticates with x-api-key rather than a Bearer token.
func (p *AnthropicProvider) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: p.apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

// SendMessage sends one Messages request and returns the first text block
// of the reply. Transport failures are *ai.TransportError values; a
// response with no text block is reported as an upstream failure (502).
func (p *AnthropicProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if request.Model == "" {
		request.Model = DefaultModel
	}

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "anthropic"),
			observability.String(observability.AttrLLMEndpoint, p.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
		)
		defer span.AddEvent(observability.EventLLMRequestEnd)
	}

	anthropicReq := requestToAnthropic(request)

	if observer != nil {
		observer.Trace(ctx, "Anthropic provider preparing request",
			observability.String(observability.AttrLLMProvider, "anthropic"),
			observability.String(observability.AttrLLMEndpoint, p.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrLLMMaxTokens, anthropicReq.MaxTokens),
		)
	}

	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	httpResponse, resp, err := utils.DoPostSync[anthropicResponse](
		ctx,
		p.client,
		p.baseURL+messagesEndpoint,
		"",
		anthropicReq,
		p.buildHeaders()...,
	)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "HTTP request failed", observability.Error(err))
		}
		return nil, err
	}

	result, err := anthropicToGeneric(*resp)
	if err != nil {
		upstream := ai.UpstreamStatus(http.StatusBadGateway, "")
		upstream.Err = err
		return nil, upstream
	}
	if result.Model == "" {
		result.Model = request.Model
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, result.Id),
			observability.String(observability.AttrLLMFinishReason, result.FinishReason),
			observability.Int(observability.AttrHTTPStatusCode, httpResponse.StatusCode),
			observability.Int(observability.AttrLLMTokensPrompt, result.Usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, result.Usage.CompletionTokens),
		)
	}

	return result, nil
}
