package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Issuance kinds.
const (
	KindPair   = "pair"
	KindSingle = "single"
	KindRemote = "remote"
)

// Verification results.
const (
	ResultOK      = "ok"
	ResultMissing = "missing"
	ResultFailed  = "failed"
)

// Metrics holds the service collectors. A nil *Metrics records nothing, so
// components can be built without one in tests.
type Metrics struct {
	TokensIssued  *prometheus.CounterVec
	TokensEvicted *prometheus.CounterVec
	Verifications *prometheus.CounterVec
	IssueDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TokensIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenreg_tokens_issued_total",
				Help: "Total number of tokens issued",
			},
			[]string{"kind"},
		),
		TokensEvicted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenreg_tokens_evicted_total",
				Help: "Total number of persisted tokens deleted",
			},
			[]string{"reason"},
		),
		Verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenreg_verifications_total",
				Help: "Total number of bearer token verifications",
			},
			[]string{"result"},
		),
		IssueDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tokenreg_issue_duration_seconds",
				Help:    "Duration of token issuance in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.TokensIssued, m.TokensEvicted, m.Verifications, m.IssueDuration)
	return m
}

func (m *Metrics) Issued(kind string, started time.Time) {
	if m == nil {
		return
	}
	m.TokensIssued.WithLabelValues(kind).Inc()
	m.IssueDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Evicted(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TokensEvicted.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) Verified(result string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(result).Inc()
}

// Handler serves the registry in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
