package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess      = "success"
	OutcomeInsufficient = "insufficient_tokens"
	OutcomeGenerator    = "generator_error"
	OutcomeRejected     = "rejected"
	OutcomeError        = "error"
)

// Metrics holds the Prometheus collectors for the planner API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	generations      *prometheus.CounterVec
	generatorLatency prometheus.Histogram
	redemptions      *prometheus.CounterVec
	tokensDebited    prometheus.Counter
	tokensCredited   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_generations_total",
				Help: "Idea generation requests by outcome",
			},
			[]string{"outcome"},
		),
		generatorLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "planner_generator_duration_seconds",
				Help:    "Latency of calls to the idea generator",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		),
		redemptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_coupon_redemptions_total",
				Help: "Coupon redemption attempts by outcome",
			},
			[]string{"outcome"},
		),
		tokensDebited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_tokens_debited_total",
			Help: "Tokens consumed by successful generations",
		}),
		tokensCredited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_tokens_credited_total",
			Help: "Tokens credited by coupon redemptions",
		}),
	}
	reg.MustRegister(m.generations, m.generatorLatency, m.redemptions, m.tokensDebited, m.tokensCredited)
	return m
}

// Generation records a generation attempt. A successful one debits a token.
func (m *Metrics) Generation(outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.tokensDebited.Inc()
	}
}

// GeneratorLatency records how long a generator call took.
func (m *Metrics) GeneratorLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.generatorLatency.Observe(d.Seconds())
}

// Redemption records a redemption attempt and the credit it granted.
func (m *Metrics) Redemption(outcome string, credited int) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(outcome).Inc()
	if credited > 0 {
		m.tokensCredited.Add(float64(credited))
	}
}
