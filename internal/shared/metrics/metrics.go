package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	providerAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_attempts_total",
		Help: "LLM provider attempts by outcome.",
	}, []string{"provider", "outcome"})

	providerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_attempt_duration_seconds",
		Help:    "Latency of a single provider attempt.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 180},
	}, []string{"provider"})

	providersExhausted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "providers_exhausted_total",
		Help: "Dispatches where every provider failed.",
	})

	parseFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parse_fallbacks_total",
		Help: "Model responses that did not match the expected shape.",
	}, []string{"kind"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(providerAttempts, providerDuration, providersExhausted, parseFallbacks, httpRequests)
}

// ObserveProviderAttempt records one provider call and its outcome ("ok", "error", "rejected").
func ObserveProviderAttempt(provider, outcome string, d time.Duration) {
	providerAttempts.WithLabelValues(provider, outcome).Inc()
	providerDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// IncProvidersExhausted counts a dispatch that ended in the sentinel.
func IncProvidersExhausted() {
	providersExhausted.Inc()
}

// IncParseFallback counts a parser fallback for the given response kind.
func IncParseFallback(kind string) {
	parseFallbacks.WithLabelValues(kind).Inc()
}

// ObserveRequest counts a completed HTTP request.
func ObserveRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
