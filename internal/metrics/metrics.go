package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bot's Prometheus collectors. A nil *Metrics is a no-op,
// which keeps tests off the default registry.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RateLimitDenials   *prometheus.CounterVec
	AIFailuresTotal    prometheus.Counter
	DocumentRejections prometheus.Counter
	TrackedUsers       prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsaathi_requests_total",
			Help: "Total requests handled, by category and outcome",
		}, []string{"category", "outcome"}),
		RateLimitDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsaathi_ratelimit_denials_total",
			Help: "Total requests denied by the rate limiter, by category",
		}, []string{"category"}),
		AIFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsaathi_ai_failures_total",
			Help: "Total AI service call failures",
		}),
		DocumentRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsaathi_document_rejections_total",
			Help: "Total uploads rejected as unsupported attachments",
		}),
		TrackedUsers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "taxsaathi_ratelimit_tracked_users",
			Help: "Current number of users held in the quota map",
		}),
	}
}

func (m *Metrics) ObserveRequest(category, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(category, outcome).Inc()
}

func (m *Metrics) ObserveDenial(category string) {
	if m == nil {
		return
	}
	m.RateLimitDenials.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveAIFailure() {
	if m == nil {
		return
	}
	m.AIFailuresTotal.Inc()
}

func (m *Metrics) ObserveDocumentRejection() {
	if m == nil {
		return
	}
	m.DocumentRejections.Inc()
}

func (m *Metrics) SetTrackedUsers(count int) {
	if m == nil {
		return
	}
	m.TrackedUsers.Set(float64(count))
}
