package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/agentswarm/core/suggest"
	"github.com/leofalp/agentswarm/providers/ai"
	"github.com/leofalp/agentswarm/providers/observability"
	"github.com/leofalp/agentswarm/providers/observability/promobs"
	"github.com/leofalp/agentswarm/providers/observability/slogobs"
)

const agentReply = `[{"agent_id":"a1","agent_name":"Scout","agent_purpose_and_tasks":"watch",
"linked_empire_need_or_component":"intel","primary_domain_category":"research",
"suggested_technical_approach":"crawler","estimated_complexity_to_build":"Low",
"key_data_inputs":["feeds"],"key_data_outputs_or_actions":["reports"],}]`

const empireJSON = `{
  "empire_name": "Acme",
  "primary_focus_domains": ["retail"],
  "main_goals": ["grow"],
  "available_resources": [],
  "core_principles": ["honesty"],
  "key_challenges": ["competition"]
}`

type stubProvider struct {
	response *ai.ChatResponse
	err      error
}

func (p *stubProvider) SendMessage(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
	return p.response, p.err
}
func (p *stubProvider) WithAPIKey(string) ai.Provider           { return p }
func (p *stubProvider) WithBaseURL(string) ai.Provider          { return p }
func (p *stubProvider) WithHttpClient(*http.Client) ai.Provider { return p }

func newTestServer(t *testing.T, provider ai.Provider, opts ...Option) (*httptest.Server, *slogobs.Observer) {
	t.Helper()
	observer := slogobs.New(slogobs.WithOutput(io.Discard))
	svc := suggest.New(provider)
	srv := httptest.NewServer(New(svc, append([]Option{WithObserver(observer)}, opts...)...))
	t.Cleanup(srv.Close)
	return srv, observer
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthAndRoot(t *testing.T) {
	srv, observer := newTestServer(t, &stubProvider{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	var health map[string]string
	decodeBody(t, resp, &health)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "Agent Swarm MCP Server is running", health["message"])

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	var welcome map[string]string
	decodeBody(t, resp, &welcome)
	assert.Equal(t, "Welcome to Agent Swarm MCP Server", welcome["message"])
	assert.Equal(t, "/health", welcome["health"])

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, int64(1), observer.CounterValue(observability.MetricHTTPRequests,
		observability.String(observability.AttrHTTPRoute, "GET /health"),
		observability.String(observability.AttrHTTPStatusCode, "200"),
	))
	assert.Equal(t, int64(1), observer.CounterValue(observability.MetricHTTPRequests,
		observability.String(observability.AttrHTTPRoute, "unmatched"),
		observability.String(observability.AttrHTTPStatusCode, "404"),
	))
}

func TestMCPPlaceholder(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})

	resp, err := http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(`{"method":"ping","id":7}`))
	require.NoError(t, err)
	var body struct {
		ID     float64           `json:"id"`
		Result map[string]string `json:"result"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, float64(7), body.ID)
	assert.Equal(t, "MCP endpoint ready for implementation", body.Result["message"])
}

func TestSuggestAgents(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{response: &ai.ChatResponse{Content: "Agents:\n" + agentReply}})

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/suggest-agents", strings.NewReader(empireJSON))
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-1", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "heuristic_repair", resp.Header.Get("X-Recovery-Stage"))

	var agents []map[string]any
	decodeBody(t, resp, &agents)
	require.Len(t, agents, 1)
	assert.Equal(t, "Scout", agents[0]["agent_name"])
}

func TestSuggestAgents_Errors(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
		body     string
		status   int
		detail   string
		field    string
	}{
		{
			name:     "malformed json",
			provider: &stubProvider{},
			body:     `{"empire_name":`,
			status:   http.StatusUnprocessableEntity,
			detail:   "invalid JSON body",
		},
		{
			name:     "missing field",
			provider: &stubProvider{},
			body:     `{"empire_name":"Acme"}`,
			status:   http.StatusUnprocessableEntity,
			field:    "primary_focus_domains",
		},
		{
			name:     "network",
			provider: &stubProvider{err: ai.NetworkError(io.ErrUnexpectedEOF)},
			body:     empireJSON,
			status:   http.StatusServiceUnavailable,
			detail:   "Network error when calling Claude API",
		},
		{
			name:     "upstream status passthrough",
			provider: &stubProvider{err: ai.UpstreamStatus(http.StatusUnauthorized, `{"error":"bad key"}`)},
			body:     empireJSON,
			status:   http.StatusUnauthorized,
			detail:   "Error from Claude API",
		},
		{
			name:     "unrecoverable reply",
			provider: &stubProvider{response: &ai.ChatResponse{Content: "I cannot help with that."}},
			body:     empireJSON,
			status:   http.StatusBadGateway,
			detail:   "Could not produce a valid list",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.provider)

			resp, err := http.Post(srv.URL+"/suggest-agents", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body errorBody
			decodeBody(t, resp, &body)
			assert.Contains(t, body.Detail, tt.detail)
			assert.Equal(t, tt.field, body.Field)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestSuggestAgentsExtended(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{response: &ai.ChatResponse{Content: agentReply}})

	resp, err := http.Post(srv.URL+"/suggest-agents-extended", "application/json",
		strings.NewReader(`{"empire_name_and_description":"Nova - guild","ends":["profit"]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var agents []map[string]any
	decodeBody(t, resp, &agents)
	assert.Len(t, agents, 1)
}

func TestRecover(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})

	resp, err := http.Post(srv.URL+"/recover", "text/plain", strings.NewReader(agentReply))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result suggest.Result
	decodeBody(t, resp, &result)
	assert.Len(t, result.Agents, 1)
	assert.Equal(t, "heuristic_repair", string(result.Stage))
	assert.NotEmpty(t, result.CorrelationID)

	resp, err = http.Post(srv.URL+"/recover", "text/plain", strings.NewReader(`[1, 2]`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var failure struct {
		Failure struct {
			Kind  string `json:"kind"`
			Index int    `json:"index"`
		} `json:"failure"`
	}
	decodeBody(t, resp, &failure)
	assert.Equal(t, "validation", failure.Failure.Kind)
	assert.Equal(t, 0, failure.Failure.Index)
}

func TestBodyLimit(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{}, WithMaxBodyBytes(16))

	resp, err := http.Post(srv.URL+"/recover", "text/plain", strings.NewReader(strings.Repeat("x", 64)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := promobs.New()
	logger := slogobs.New(slogobs.WithOutput(io.Discard))
	observer := observability.Compose(logger, metrics, logger)

	svc := suggest.New(&stubProvider{})
	srv := httptest.NewServer(New(svc, WithObserver(observer), WithMetricsHandler(metrics.Handler())))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), `agentswarm_http_requests_total{http_route="GET /health",http_status_code="200"} 1`)
}
