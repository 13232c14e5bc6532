package api

import (
	"context"

	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/service"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "estimator"

// Metrics holds the server's prometheus collectors. All of them are
// registered on the registerer passed to NewMetrics.
type Metrics struct {
	// MutationsTotal counts tree actions by name and outcome.
	// Labels: action (add_item, move_group, undo, ...), outcome (applied, noop, rejected)
	MutationsTotal *prometheus.CounterVec

	// SnapshotsTotal counts session snapshots published to observers.
	// Labels: action
	SnapshotsTotal *prometheus.CounterVec

	// UseCasesTotal counts service use cases.
	// Labels: use_case, status (success, error)
	UseCasesTotal *prometheus.CounterVec

	UseCaseDurationSeconds *prometheus.HistogramVec

	OpenSessions prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "tree",
				Name:      "mutations_total",
				Help:      "Tree mutations by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		SnapshotsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "session",
				Name:      "snapshots_total",
				Help:      "Snapshots published after a tree change",
			},
			[]string{"action"},
		),
		UseCasesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "service",
				Name:      "use_cases_total",
				Help:      "Service use cases by name and status",
			},
			[]string{"use_case", "status"},
		),
		UseCaseDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "service",
				Name:      "use_case_duration_seconds",
				Help:      "Service use case latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"use_case"},
		),
		OpenSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "session",
			Name:      "open",
			Help:      "Estimate sessions currently cached by the server",
		}),
	}
}

// RecordMutation counts one dispatched action.
func (m *Metrics) RecordMutation(action string, res estimate.Result) {
	m.MutationsTotal.WithLabelValues(action, string(res.Outcome)).Inc()
}

// ObserveUseCase lets Metrics serve as a service.UseCaseObserver.
func (m *Metrics) ObserveUseCase(_ context.Context, event service.UseCaseEvent) {
	status := "success"
	if !event.Success {
		status = "error"
	}
	m.UseCasesTotal.WithLabelValues(event.Name, status).Inc()
	m.UseCaseDurationSeconds.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
}

// SessionObserver counts snapshots for one session.
func (m *Metrics) SessionObserver() session.Observer {
	return session.ObserverFunc(func(snap session.Snapshot) {
		m.SnapshotsTotal.WithLabelValues(snap.Action).Inc()
	})
}
