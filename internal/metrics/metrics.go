package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the turn pipeline counters. A nil *Metrics is valid and
// turns every method into a no-op, so tests and trimmed deployments can
// skip registration entirely.
type Metrics struct {
	turnsStarted   prometheus.Counter
	turnsSucceeded prometheus.Counter
	turnsFailed    prometheus.Counter
}

// New registers the pipeline metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		turnsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_turns_started_total",
			Help: "Turns accepted by the orchestrator.",
		}),
		turnsSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_turns_succeeded_total",
			Help: "Turns reconciled with an assistant message.",
		}),
		turnsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_turns_failed_total",
			Help: "Turns reconciled with an error message.",
		}),
	}
}

// TurnStarted counts an accepted submission.
func (m *Metrics) TurnStarted() {
	if m != nil {
		m.turnsStarted.Inc()
	}
}

// TurnSucceeded counts a successful reconciliation.
func (m *Metrics) TurnSucceeded() {
	if m != nil {
		m.turnsSucceeded.Inc()
	}
}

// TurnFailed counts a failed reconciliation.
func (m *Metrics) TurnFailed() {
	if m != nil {
		m.turnsFailed.Inc()
	}
}
