package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "promptforge"
	subsystem = "api"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Generation outcomes. outcome is "success", "debug" or a failure kind.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generations_total",
			Help:      "Generation requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generation_duration_seconds",
			Help:      "End to end generation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"mode"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_duration_seconds",
			Help:      "Model provider call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model", "status"},
	)

	UpstreamRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_retries_total",
			Help:      "Retried model provider calls",
		},
		[]string{"model"},
	)

	TokensPromptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_prompt_total",
			Help:      "Total prompt tokens consumed",
		},
		[]string{"model"},
	)

	TokensCompletionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_completion_total",
			Help:      "Total completion tokens generated",
		},
		[]string{"model"},
	)

	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_total",
			Help:      "Async generation jobs by final status",
		},
		[]string{"status"},
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_in_flight",
			Help:      "Async generation jobs currently running",
		},
	)

	JobsSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_swept_total",
			Help:      "Finished jobs removed by the retention sweep",
		},
	)

	UserAgentFamilyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "user_agent_family_total",
			Help:      "Requests by user agent family (browser/cli/sdk/unknown)",
		},
		[]string{"family"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordGeneration records the outcome of one generation.
func RecordGeneration(mode, outcome string, durationSec float64) {
	if outcome == "" {
		outcome = "unknown"
	}
	GenerationsTotal.WithLabelValues(mode, outcome).Inc()
	GenerationDuration.WithLabelValues(mode).Observe(durationSec)
}

func RecordUpstream(model, status string, durationSec float64) {
	UpstreamDuration.WithLabelValues(model, status).Observe(durationSec)
}

func RecordUpstreamRetry(model string) {
	UpstreamRetriesTotal.WithLabelValues(model).Inc()
}

// RecordTokens records token usage reported by the provider
func RecordTokens(model string, promptTokens, completionTokens int) {
	TokensPromptTotal.WithLabelValues(model).Add(float64(promptTokens))
	TokensCompletionTotal.WithLabelValues(model).Add(float64(completionTokens))
}

func RecordJob(status string) {
	JobsTotal.WithLabelValues(status).Inc()
}

// RecordUserAgent buckets the user agent into a low cardinality family
func RecordUserAgent(ua string) {
	UserAgentFamilyTotal.WithLabelValues(userAgentFamily(ua)).Inc()
}

func userAgentFamily(ua string) string {
	ua = strings.ToLower(strings.TrimSpace(ua))
	switch {
	case ua == "":
		return "unknown"
	case containsAny(ua, "mozilla", "chrome", "safari", "firefox", "edge"):
		return "browser"
	case containsAny(ua, "curl", "wget", "httpie", "promptctl"):
		return "cli"
	case containsAny(ua, "postman", "insomnia"):
		return "api_client"
	case containsAny(ua, "axios", "fetch", "python-requests", "go-http-client", "java", "resty"):
		return "sdk"
	default:
		return "unknown"
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
