package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service counters. A nil *Metrics records nothing.
type Metrics struct {
	providerRequests *prometheus.CounterVec
	wizardSteps      *prometheus.CounterVec
	etaPolls         *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kr_eta_provider_requests_total",
			Help: "Requests sent to the geocoding and directions providers",
		}, []string{"provider", "outcome"}),
		wizardSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kr_eta_wizard_steps_total",
			Help: "Wizard steps handled, by step and outcome",
		}, []string{"step", "outcome"}),
		etaPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kr_eta_polls_total",
			Help: "ETA polls, by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.providerRequests, m.wizardSteps, m.etaPolls)
	return m
}

func (m *Metrics) ProviderRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) WizardStep(step, outcome string) {
	if m == nil {
		return
	}
	m.wizardSteps.WithLabelValues(step, outcome).Inc()
}

func (m *Metrics) Poll(outcome string) {
	if m == nil {
		return
	}
	m.etaPolls.WithLabelValues(outcome).Inc()
}
