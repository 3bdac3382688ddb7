package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/leofalp/agentswarm/providers/ai"
	"github.com/leofalp/agentswarm/providers/observability"
)

// HeaderOption is an extra request header.
type HeaderOption struct {
	Key   string
	Value string
}

// DoPostSync performs a synchronous HTTP POST request with JSON body and parses the response.
//
// Error Handling Strategy:
//   - Marshalling and request construction failures are returned as plain errors
//   - Transport failures become *ai.TransportError: KindTimeout when the deadline
//     expired, KindNetwork otherwise; cancellation is returned as the context error
//   - Non-2xx statuses become ai.UpstreamStatus with the body, HTML pages rendered to text
//   - A 2xx body that does not decode is an upstream failure reported as 502
//
// The response body is always closed; close errors are logged and never
// override the primary error.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequestPrepared,
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration(observability.AttrDuration, requestDuration),
			)
		}
		return nil, nil, ClassifyTransportError(ctx, err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, ClassifyTransportError(ctx, err)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPResponseReceived,
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration(observability.AttrDuration, requestDuration),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, ai.UpstreamStatus(res.StatusCode, ReadableBody(res.Header.Get("Content-Type"), respBody))
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		upstream := ai.UpstreamStatus(http.StatusBadGateway, TruncateString(string(respBody), DefaultMaxStringLength))
		upstream.Err = fmt.Errorf("error unmarshaling response body (status %d): %w", res.StatusCode, err)
		return res, nil, upstream
	}

	return res, &resStruct, nil
}

// ClassifyTransportError maps a failed round trip onto the transport error
// kinds. Cancellation by the caller is not a transport failure and is
// returned as the context error.
func ClassifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return fmt.Errorf("request canceled: %w", ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ai.Timeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ai.Timeout(err)
	}
	return ai.NetworkError(err)
}

// CloseWithLog closes c and logs a failure instead of returning it.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
