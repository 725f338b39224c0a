package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels stages that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels stages that failed (transport, service, or detection).
	OutcomeError = "error"
)

var (
	stagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "analysis_dashboard",
			Name:      "pipeline_stages_total",
			Help:      "Pipeline stage executions, partitioned by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)

	stageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "analysis_dashboard",
			Name:      "pipeline_stage_seconds",
			Help:      "Remote stage latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	activeRuns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "analysis_dashboard",
			Name:      "active_runs",
			Help:      "Analysis runs currently held in memory.",
		},
	)
)

// Register attaches the dashboard collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		stagesTotal,
		stageDurationSeconds,
		activeRuns,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveStage records one remote stage execution.
func ObserveStage(stage string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	stagesTotal.WithLabelValues(stage, outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	stageDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

// SetActiveRuns updates the in-memory run gauge.
func SetActiveRuns(n int) {
	activeRuns.Set(float64(n))
}
