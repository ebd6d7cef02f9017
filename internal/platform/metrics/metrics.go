package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway. A nil *Metrics is
// valid and records nothing, which keeps handler tests free of registry
// collisions.
type Metrics struct {
	Dispatches       *prometheus.CounterVec
	ConsentDecisions *prometheus.CounterVec
	ClaimsResolved   prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Dispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "openid_gateway_dispatches_total",
			Help: "Route dispatches by route and response status",
		}, []string{"route", "status"}),
		ConsentDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "openid_gateway_consent_decisions_total",
			Help: "Consent flow outcomes (auto_approve, prompt, denied, unknown_client)",
		}, []string{"outcome"}),
		ClaimsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "openid_gateway_claims_resolved_total",
			Help: "Claims payloads assembled for tokens and userinfo",
		}),
	}
}

// ObserveDispatch records one route dispatch.
func (m *Metrics) ObserveDispatch(route string, status int) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveConsentDecision records one consent flow outcome.
func (m *Metrics) ObserveConsentDecision(outcome string) {
	if m == nil {
		return
	}
	m.ConsentDecisions.WithLabelValues(outcome).Inc()
}

// ObserveClaimsResolved records one claims resolution.
func (m *Metrics) ObserveClaimsResolved() {
	if m == nil {
		return
	}
	m.ClaimsResolved.Inc()
}
