package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across the service, the model provider and the recovery pipeline.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "anthropic")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMMaxTokens is the maximum tokens allowed
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensPrompt is the number of prompt tokens
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensCompletion is the number of completion tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTransportError is the transport failure class (network, timeout, upstream_status)
	AttrLLMTransportError = "llm.transport_error"
)

// --- Recovery Attributes ---

const (
	// AttrCorrelationID ties logs, spans and persisted diagnostics of one request together
	AttrCorrelationID = "correlation_id"

	// AttrRecoveryReplyBytes is the size of the raw model reply
	AttrRecoveryReplyBytes = "recovery.reply_bytes"

	// AttrRecoveryStage is the pipeline stage that produced the result or failed
	AttrRecoveryStage = "recovery.stage"

	// AttrRecoveryResult is "success" or the failure kind
	AttrRecoveryResult = "recovery.result"

	// AttrRecoveryFailure is the failure kind of an unsuccessful run
	AttrRecoveryFailure = "recovery.failure"

	// AttrRecoveryRecords is the number of validated records
	AttrRecoveryRecords = "recovery.records"

	// AttrDiagnosticsKey is where a diagnostic entry was persisted
	AttrDiagnosticsKey = "diagnostics.key"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPRoute is the matched server route
	AttrHTTPRoute = "http.route"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanSuggestAgents covers one suggestion request end to end
	SpanSuggestAgents = "suggest.agents"

	// SpanLLMRequest is the span name for LLM API requests
	SpanLLMRequest = "llm.request"

	// SpanRecovery covers one run of the recovery pipeline
	SpanRecovery = "recovery.run"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of an LLM request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of an LLM request
	EventLLMRequestEnd = "llm.request.end"

	// EventHTTPRequestPrepared marks a serialised outbound request
	EventHTTPRequestPrepared = "http.request.prepared"

	// EventHTTPResponseReceived marks the arrival of an outbound response
	EventHTTPResponseReceived = "http.response.received"
)

// --- Metric Names ---

const (
	// MetricRecoveryOutcomes counts pipeline runs by result and stage
	MetricRecoveryOutcomes = "agentswarm.recovery.outcomes"

	// MetricRecoveryDuration is the histogram of pipeline run time in seconds
	MetricRecoveryDuration = "agentswarm.recovery.duration"

	// MetricLLMRequests counts model calls by result
	MetricLLMRequests = "agentswarm.llm.requests"

	// MetricLLMRequestDuration is the histogram of model call latency in seconds
	MetricLLMRequestDuration = "agentswarm.llm.request.duration"

	// MetricHTTPRequests counts served HTTP requests by route and status
	MetricHTTPRequests = "agentswarm.http.requests"
)
