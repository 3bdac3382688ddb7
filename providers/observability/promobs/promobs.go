package promobs

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leofalp/agentswarm/providers/observability"
)

// DefaultLabels declares the label sets of the service's own metrics.
var DefaultLabels = map[string][]string{
	observability.MetricRecoveryOutcomes:   {observability.AttrRecoveryResult, observability.AttrRecoveryStage},
	observability.MetricRecoveryDuration:   {},
	observability.MetricLLMRequests:        {observability.AttrLLMTransportError},
	observability.MetricLLMRequestDuration: {},
	observability.MetricHTTPRequests:       {observability.AttrHTTPRoute, observability.AttrHTTPStatusCode},
}

// Option configures a Metrics.
type Option func(*Metrics)

// WithLabels fixes the label keys of metric name.
func WithLabels(name string, keys ...string) Option {
	return func(m *Metrics) {
		m.labels[name] = keys
	}
}

// WithBuckets sets the histogram buckets, in seconds. The default is
// prometheus.DefBuckets.
func WithBuckets(buckets ...float64) Option {
	return func(m *Metrics) {
		m.buckets = buckets
	}
}

// WithRuntimeCollectors registers the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Metrics) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// Metrics implements observability.Metrics with Prometheus vectors held in
// a private registry.
type Metrics struct {
	registry *prometheus.Registry
	buckets  []float64

	mu         sync.Mutex
	labels     map[string][]string
	counters   map[string]*counter
	histograms map[string]*histogram
}

var _ observability.Metrics = (*Metrics)(nil)

// New returns a Metrics with its own registry.
func New(opts ...Option) *Metrics {
	m := &Metrics{
		registry:   prometheus.NewRegistry(),
		buckets:    prometheus.DefBuckets,
		labels:     make(map[string][]string, len(DefaultLabels)),
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
	for name, keys := range DefaultLabels {
		m.labels[name] = keys
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Counter returns the counter for name, creating and registering its vector
// on first use.
func (m *Metrics) Counter(name string) observability.Counter {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[name]
	if !ok {
		c = &counter{metrics: m, name: name}
		m.counters[name] = c
	}
	return c
}

// Histogram returns the histogram for name, creating and registering its
// vector on first use.
func (m *Metrics) Histogram(name string) observability.Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.histograms[name]
	if !ok {
		h = &histogram{metrics: m, name: name}
		m.histograms[name] = h
	}
	return h
}

// labelKeys returns the fixed label keys of name, deciding them from attrs
// when the metric has none declared.
func (m *Metrics) labelKeys(name string, attrs []observability.Attribute) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if keys, ok := m.labels[name]; ok {
		return keys
	}
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	sort.Strings(keys)
	m.labels[name] = keys
	return keys
}

type counter struct {
	metrics *Metrics
	name    string
	once    sync.Once
	keys    []string
	vec     *prometheus.CounterVec
	err     error
}

func (c *counter) init(attrs []observability.Attribute) {
	c.keys = c.metrics.labelKeys(c.name, attrs)
	c.vec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricName(c.name) + "_total",
		Help: "Counter " + c.name,
	}, LabelNames(c.keys))
	c.err = c.metrics.registry.Register(c.vec)
}

// Add increments the series selected by attrs. Negative values are ignored,
// as Prometheus counters only go up.
func (c *counter) Add(_ context.Context, value int64, attrs ...observability.Attribute) {
	c.once.Do(func() { c.init(attrs) })
	if c.err != nil || value < 0 {
		return
	}
	c.vec.WithLabelValues(labelValues(c.keys, attrs)...).Add(float64(value))
}

type histogram struct {
	metrics *Metrics
	name    string
	once    sync.Once
	keys    []string
	vec     *prometheus.HistogramVec
	err     error
}

func (h *histogram) init(attrs []observability.Attribute) {
	h.keys = h.metrics.labelKeys(h.name, attrs)
	name := MetricName(h.name)
	if strings.HasSuffix(h.name, ".duration") {
		name += "_seconds"
	}
	h.vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    "Histogram " + h.name,
		Buckets: h.metrics.buckets,
	}, LabelNames(h.keys))
	h.err = h.metrics.registry.Register(h.vec)
}

func (h *histogram) Record(_ context.Context, value float64, attrs ...observability.Attribute) {
	h.once.Do(func() { h.init(attrs) })
	if h.err != nil {
		return
	}
	h.vec.WithLabelValues(labelValues(h.keys, attrs)...).Observe(value)
}

// labelValues orders attribute values by keys. Missing keys get "" and
// attributes outside keys are dropped.
func labelValues(keys []string, attrs []observability.Attribute) []string {
	values := make([]string, len(keys))
	for i, key := range keys {
		for _, a := range attrs {
			if a.Key == key {
				values[i] = fmt.Sprint(a.Value)
				break
			}
		}
	}
	return values
}

// MetricName converts a dotted metric name to a valid Prometheus name.
func MetricName(name string) string {
	return sanitize(name)
}

// LabelNames converts attribute keys to valid Prometheus label names.
func LabelNames(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = sanitize(k)
	}
	return out
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
