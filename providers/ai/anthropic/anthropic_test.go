package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/agentswarm/providers/ai"
)

// TestNew verifies that New() reads the environment and applies defaults.
func TestNew(t *testing.T) {
	t.Setenv("CLAUDE_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "fallback-key")
	t.Setenv("ANTHROPIC_API_BASE_URL", "")

	provider := New()
	if provider.baseURL != defaultBaseURL {
		t.Errorf("expected baseURL %q, got %q", defaultBaseURL, provider.baseURL)
	}
	if provider.apiKey != "fallback-key" {
		t.Errorf("expected apiKey from ANTHROPIC_API_KEY, got %q", provider.apiKey)
	}
	if provider.client.Timeout != DefaultTimeout {
		t.Errorf("expected client timeout %v, got %v", DefaultTimeout, provider.client.Timeout)
	}
}

func TestNew_ClaudeKeyWins(t *testing.T) {
	t.Setenv("CLAUDE_API_KEY", "claude-key")
	t.Setenv("ANTHROPIC_API_KEY", "fallback-key")
	t.Setenv("ANTHROPIC_API_BASE_URL", "https://proxy.example.com/v1")

	provider := New()
	if provider.apiKey != "claude-key" {
		t.Errorf("expected apiKey %q, got %q", "claude-key", provider.apiKey)
	}
	if provider.baseURL != "https://proxy.example.com/v1" {
		t.Errorf("expected baseURL from env, got %q", provider.baseURL)
	}
}

func TestWithSetters(t *testing.T) {
	customClient := &http.Client{}
	provider := New().
		WithAPIKey("test-api-key").
		WithBaseURL("https://custom.anthropic.com").
		WithHttpClient(customClient).(*AnthropicProvider)

	if provider.apiKey != "test-api-key" {
		t.Errorf("expected apiKey %q, got %q", "test-api-key", provider.apiKey)
	}
	if provider.baseURL != "https://custom.anthropic.com" {
		t.Errorf("expected baseURL %q, got %q", "https://custom.anthropic.com", provider.baseURL)
	}
	if provider.client != customClient {
		t.Error("expected custom HTTP client to be set")
	}

	provider.WithTimeout(5 * time.Second)
	if customClient.Timeout != 5*time.Second {
		t.Errorf("expected timeout to be applied to the custom client, got %v", customClient.Timeout)
	}
}

// TestSendMessage_Basic exercises the happy path: correct headers are sent,
// the request body is in Messages format, and the response is decoded.
func TestSendMessage_Basic(t *testing.T) {
	var reqBody anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != messagesEndpoint {
			t.Errorf("expected path %q, got %q", messagesEndpoint, r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected x-api-key 'test-key', got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("expected anthropic-version %q, got %q", anthropicVersion, r.Header.Get("anthropic-version"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		resp := anthropicResponse{
			ID:   "msg_test123",
			Type: "message",
			Role: "assistant",
			Content: []responseContentBlock{
				{Type: "thinking"},
				{Type: "text", Text: `[{"a":"x"}]`},
				{Type: "text", Text: "ignored"},
			},
			StopReason: "end_turn",
			Usage:      anthropicUsage{InputTokens: 10, OutputTokens: 8},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		SystemPrompt: "be terse",
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: "json only"},
			ai.UserMessage("Hello"),
		},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if reqBody.Model != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, reqBody.Model)
	}
	if reqBody.MaxTokens != DefaultMaxTokens {
		t.Errorf("expected max_tokens %d, got %d", DefaultMaxTokens, reqBody.MaxTokens)
	}
	if reqBody.System != "be terse\n\njson only" {
		t.Errorf("unexpected system field %q", reqBody.System)
	}
	if len(reqBody.Messages) != 1 || reqBody.Messages[0].Role != "user" || reqBody.Messages[0].Content[0].Text != "Hello" {
		t.Errorf("unexpected messages %+v", reqBody.Messages)
	}

	if response.Content != `[{"a":"x"}]` {
		t.Errorf("expected first text block, got %q", response.Content)
	}
	if response.FinishReason != ai.FinishReasonStop {
		t.Errorf("expected finish reason %q, got %q", ai.FinishReasonStop, response.FinishReason)
	}
	if response.Model != DefaultModel {
		t.Errorf("expected model fallback to request model, got %q", response.Model)
	}
	if response.Usage.TotalTokens != 18 {
		t.Errorf("expected 18 total tokens, got %d", response.Usage.TotalTokens)
	}
}

func TestSendMessage_GenerationConfig(t *testing.T) {
	var reqBody anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&reqBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m","model":"claude-x","stop_reason":"max_tokens","content":[{"type":"text","text":"[{"}]}`))
	}))
	defer server.Close()

	response, err := New().WithAPIKey("k").WithBaseURL(server.URL).SendMessage(context.Background(), ai.ChatRequest{
		Model:            "claude-x",
		Messages:         []ai.Message{ai.UserMessage("hi")},
		GenerationConfig: &ai.GenerationConfig{MaxTokens: 64, Temperature: 0.5},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reqBody.MaxTokens != 64 {
		t.Errorf("expected max_tokens 64, got %d", reqBody.MaxTokens)
	}
	if reqBody.Temperature == nil || *reqBody.Temperature != 0.5 {
		t.Errorf("expected temperature 0.5, got %v", reqBody.Temperature)
	}
	if !response.Truncated() {
		t.Errorf("expected max_tokens stop to be reported as truncated, got %q", response.FinishReason)
	}
}

func TestSendMessage_MissingAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := New().WithAPIKey("").WithBaseURL(server.URL).SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{ai.UserMessage("hi")},
	})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if called {
		t.Error("no request should be sent without a key")
	}
}

func TestSendMessage_NoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m","content":[{"type":"tool_use"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	_, err := New().WithAPIKey("k").WithBaseURL(server.URL).SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{ai.UserMessage("hi")},
	})

	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *ai.TransportError, got %T: %v", err, err)
	}
	if transportErr.Kind != ai.KindUpstreamStatus || transportErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected upstream 502, got %s %d", transportErr.Kind, transportErr.StatusCode)
	}
	if !errors.Is(err, errNoTextContent) {
		t.Errorf("expected errNoTextContent in chain, got %v", err)
	}
}

func TestSendMessage_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := New().WithAPIKey("k").WithBaseURL(server.URL).SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{ai.UserMessage("hi")},
	})

	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *ai.TransportError, got %T: %v", err, err)
	}
	if transportErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", transportErr.StatusCode)
	}
	if !strings.Contains(transportErr.Body, "rate_limit_error") {
		t.Errorf("expected upstream body to be kept, got %q", transportErr.Body)
	}
}

func TestMapStopReason(t *testing.T) {
	tests := map[string]string{
		"end_turn":      ai.FinishReasonStop,
		"stop_sequence": ai.FinishReasonStop,
		"max_tokens":    ai.FinishReasonLength,
		"":              ai.FinishReasonStop,
	}
	for in, want := range tests {
		if got := mapStopReason(in); got != want {
			t.Errorf("mapStopReason(%q) = %q, want %q", in, got, want)
		}
	}
}
