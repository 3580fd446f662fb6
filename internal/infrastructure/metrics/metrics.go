package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain counters exposed on /metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	ProjectsCreated    prometheus.Counter
	ProjectTransitions *prometheus.CounterVec
	Purchases          *prometheus.CounterVec
	CreditsPurchased   prometheus.Counter
	AuthRejections     *prometheus.CounterVec
	EmissionsCalcs     prometheus.Counter
}

// New registers all metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProjectsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "tidechain_projects_created_total",
			Help: "Projects registered by NGOs",
		}),
		ProjectTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tidechain_project_status_changes_total",
			Help: "Project status writes by source and target status",
		}, []string{"from", "to", "kind"}), // kind: "transition", "retransition"

		Purchases: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tidechain_credit_purchases_total",
			Help: "Credit purchase attempts by outcome",
		}, []string{"outcome"}), // outcome: "issued", "unverified", "insufficient", "failed"

		CreditsPurchased: f.NewCounter(prometheus.CounterOpts{
			Name: "tidechain_credits_purchased_total",
			Help: "Credits sold across all issued transactions",
		}),
		AuthRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tidechain_auth_rejections_total",
			Help: "Requests rejected by the authorization gate",
		}, []string{"reason"}), // reason: "unauthorized", "forbidden"

		EmissionsCalcs: f.NewCounter(prometheus.CounterOpts{
			Name: "tidechain_emissions_calculations_total",
			Help: "Emission calculations served",
		}),
	}
}

func (m *Metrics) IncProjectCreated() {
	if m != nil {
		m.ProjectsCreated.Inc()
	}
}

// IncTransition records a status write. retransition is true when the
// project was already out of pending.
func (m *Metrics) IncTransition(from, to string, retransition bool) {
	if m == nil {
		return
	}
	kind := "transition"
	if retransition {
		kind = "retransition"
	}
	m.ProjectTransitions.WithLabelValues(from, to, kind).Inc()
}

func (m *Metrics) IncPurchase(outcome string) {
	if m != nil {
		m.Purchases.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) AddCredits(n float64) {
	if m != nil {
		m.CreditsPurchased.Add(n)
	}
}

func (m *Metrics) IncAuthRejection(reason string) {
	if m != nil {
		m.AuthRejections.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncEmissionsCalc() {
	if m != nil {
		m.EmissionsCalcs.Inc()
	}
}
