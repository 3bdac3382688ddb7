package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/agentswarm/core/agentspec"
	"github.com/leofalp/agentswarm/core/suggest"
	"github.com/leofalp/agentswarm/providers/observability"
)

const (
	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 1 << 20

	headerRequestID     = "X-Request-ID"
	headerRecoveryStage = "X-Recovery-Stage"
	headerTruncated     = "X-Reply-Truncated"
)

// Suggester is the use case served by the HTTP layer.
type Suggester interface {
	SuggestAgents(ctx context.Context, description agentspec.EmpireDescription) (*suggest.Result, error)
	SuggestAgentsExtended(ctx context.Context, description agentspec.ExtendedEmpireDescription) (*suggest.Result, error)
	Recover(ctx context.Context, correlationID, raw string) (*suggest.Result, error)
}

var _ Suggester = (*suggest.Service)(nil)

// Server routes HTTP requests to a Suggester.
type Server struct {
	suggester Suggester
	observer  observability.Provider
	metrics   http.Handler
	maxBody   int64
	mux       *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithObserver logs every request and counts it by route and status.
func WithObserver(observer observability.Provider) Option {
	return func(s *Server) {
		s.observer = observer
	}
}

// WithMetricsHandler serves handler on GET /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New builds the routes.
func New(suggester Suggester, opts ...Option) *Server {
	s := &Server{
		suggester: suggester,
		maxBody:   DefaultMaxBodyBytes,
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /mcp", s.handleMCP)
	s.mux.HandleFunc("POST /suggest-agents", s.handleSuggestAgents)
	s.mux.HandleFunc("POST /suggest-agents-extended", s.handleSuggestAgentsExtended)
	s.mux.HandleFunc("POST /recover", s.handleRecover)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
	return s
}

// ServeHTTP assigns the correlation id, serves the request and records it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(headerRequestID, id)

	ctx := observability.ContextWithCorrelationID(r.Context(), id)
	if s.observer != nil {
		ctx = observability.ContextWithObserver(ctx, s.observer)
	}
	r = r.WithContext(ctx)

	rec := &statusRecorder{ResponseWriter: w}
	s.mux.ServeHTTP(rec, r)

	if s.observer == nil {
		return
	}
	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}
	status := rec.Status()
	s.observer.Counter(observability.MetricHTTPRequests).Add(ctx, 1,
		observability.String(observability.AttrHTTPRoute, route),
		observability.String(observability.AttrHTTPStatusCode, strconv.Itoa(status)),
	)
	s.observer.Info(ctx, "request handled",
		observability.String(observability.AttrHTTPMethod, r.Method),
		observability.String(observability.AttrHTTPRoute, route),
		observability.Int(observability.AttrHTTPStatusCode, status),
		observability.Int(observability.AttrHTTPResponseBodySize, rec.bytes),
		observability.Duration(observability.AttrDuration, time.Since(start)),
	)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to Agent Swarm MCP Server",
		"docs":    "/docs",
		"health":  "/health",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Agent Swarm MCP Server is running",
	})
}

type mcpRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
	ID     any            `json:"id,omitempty"`
}

// handleMCP acknowledges the request without implementing the protocol.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req mcpRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id": req.ID,
		"result": map[string]string{
			"message": "MCP endpoint ready for implementation",
		},
	})
}

func (s *Server) handleSuggestAgents(w http.ResponseWriter, r *http.Request) {
	var description agentspec.EmpireDescription
	if !s.decode(w, r, &description) {
		return
	}
	result, err := s.suggester.SuggestAgents(r.Context(), description)
	s.writeAgents(w, r, result, err)
}

func (s *Server) handleSuggestAgentsExtended(w http.ResponseWriter, r *http.Request) {
	var description agentspec.ExtendedEmpireDescription
	if !s.decode(w, r, &description) {
		return
	}
	result, err := s.suggester.SuggestAgentsExtended(r.Context(), description)
	s.writeAgents(w, r, result, err)
}

// handleRecover runs the pipeline over the request body. Unlike the
// suggestion routes the caller owns the reply, so a failure answers 422
// with the full report.
func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeBodyError(w, r, err)
		return
	}

	id := observability.CorrelationIDFromContext(r.Context())
	result, err := s.suggester.Recover(r.Context(), id, string(body))
	if err != nil {
		var suggestErr *suggest.Error
		if errors.As(err, &suggestErr) && suggestErr.Kind == suggest.KindRecovery {
			writeError(w, http.StatusUnprocessableEntity, errorBody{
				Detail:    suggestErr.Failure.Error(),
				RequestID: id,
				Failure:   suggestErr.Failure,
			})
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set(headerRecoveryStage, string(result.Stage))
	writeJSON(w, http.StatusOK, result)
}

// writeAgents answers a suggestion call with the bare agent list.
func (s *Server) writeAgents(w http.ResponseWriter, r *http.Request, result *suggest.Result, err error) {
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set(headerRecoveryStage, string(result.Stage))
	if result.Truncated {
		w.Header().Set(headerTruncated, "true")
	}
	writeJSON(w, http.StatusOK, result.Agents)
}

// writeServiceError maps err to a status and a public message. The full
// error only goes to the log.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	id := observability.CorrelationIDFromContext(ctx)

	var suggestErr *suggest.Error
	if !errors.As(err, &suggestErr) {
		suggestErr = &suggest.Error{Kind: suggest.KindInternal, Err: err}
	}

	status := suggestErr.HTTPStatus()
	if s.observer != nil {
		s.observer.Error(ctx, "request failed",
			observability.String("kind", string(suggestErr.Kind)),
			observability.Int(observability.AttrHTTPStatusCode, status),
			observability.Error(err),
		)
	}
	writeError(w, status, errorBody{
		Detail:    suggestErr.PublicMessage(),
		Field:     suggestErr.Field,
		RequestID: id,
	})
}

// decode reads a JSON body into v, answering 413 or 422 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := dec.Decode(v); err != nil {
		s.writeBodyError(w, r, err)
		return false
	}
	return true
}

func (s *Server) writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	id := observability.CorrelationIDFromContext(r.Context())

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, errorBody{
			Detail:    fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			RequestID: id,
		})
		return
	}
	writeError(w, http.StatusUnprocessableEntity, errorBody{
		Detail:    "invalid JSON body: " + err.Error(),
		RequestID: id,
	})
}
