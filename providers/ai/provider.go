package ai

import (
	"context"
	"net/http"
)

// Provider is the interface every model provider implementation must
// satisfy. It covers a single synchronous request: authentication, endpoint
// configuration, message dispatch and response interpretation.
//
// Transport failures are reported as *TransportError so that callers can
// tell a network failure from a timeout or a non-2xx upstream status.
type Provider interface {
	// SendMessage sends a chat request to the provider and returns the
	// completed response.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}
