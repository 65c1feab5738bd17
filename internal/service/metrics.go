package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds pipeline counters. A nil *Metrics records nothing.
type Metrics struct {
	submissions     *prometheus.CounterVec
	classifications *prometheus.CounterVec
}

// NewMetrics creates the pipeline metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_submissions_total",
				Help: "Total number of intake submissions by outcome.",
			},
			[]string{"outcome"},
		),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_classifications_total",
				Help: "Total number of prescription analyses by result.",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{m.submissions, m.classifications} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeClassification(c Classification) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case c.Fallback:
		result = "fallback"
	case c.Text == NoPrescriptionText:
		result = "skipped"
	}
	m.classifications.WithLabelValues(result).Inc()
}
