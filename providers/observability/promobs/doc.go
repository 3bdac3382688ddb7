// Package promobs implements observability.Metrics on a Prometheus registry.
//
// Metric names are converted to Prometheus form ("agentswarm.llm.requests"
// becomes "agentswarm_llm_requests_total") and attribute keys become labels.
// Every metric has a fixed label set, taken from [DefaultLabels], from
// [WithLabels], or from the attributes of its first update. Combine it with
// a logging backend through observability.Compose.
package promobs
