package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates the engine's Prometheus metrics.
type Collector struct {
	phaseTransitions    *prometheus.CounterVec
	phaseDuration       *prometheus.HistogramVec
	taskOutcomes        *prometheus.CounterVec
	workerInvocations   *prometheus.HistogramVec
	conflictsDetected   *prometheus.CounterVec
	conflictsEscalated  prometheus.Counter
	consensusConfidence prometheus.Histogram
	sessionIterations   prometheus.Histogram

	logger *zap.Logger
}

// NewCollector registers the engine collectors under the namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.phaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_transitions_total",
			Help:      "Total number of session phase transitions",
		},
		[]string{"from", "to"},
	)

	c.phaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Time spent in each phase",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	c.taskOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_outcomes_total",
			Help:      "Dispatched task outcomes by role and status",
		},
		[]string{"role", "status"},
	)

	c.workerInvocations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_invocation_duration_seconds",
			Help:      "Worker invocation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"role"},
	)

	c.conflictsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_detected_total",
			Help:      "Detected conflicts by level",
		},
		[]string{"level"},
	)

	c.conflictsEscalated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_escalated_total",
			Help:      "Conflicts escalated instead of resolved",
		},
	)

	c.consensusConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "consensus_confidence",
			Help:      "Consensus confidence of produced results",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	c.sessionIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_iterations",
			Help:      "Iterations needed per session",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
	)

	return c
}

// RecordPhaseTransition counts a phase transition.
func (c *Collector) RecordPhaseTransition(from, to string) {
	c.phaseTransitions.WithLabelValues(from, to).Inc()
}

// RecordPhaseDuration observes time spent in a phase.
func (c *Collector) RecordPhaseDuration(phase string, d time.Duration) {
	c.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordTaskOutcome counts one task's terminal status.
func (c *Collector) RecordTaskOutcome(role, status string) {
	c.taskOutcomes.WithLabelValues(role, status).Inc()
}

// RecordWorkerInvocation observes one invocation's latency.
func (c *Collector) RecordWorkerInvocation(role string, d time.Duration) {
	c.workerInvocations.WithLabelValues(role).Observe(d.Seconds())
}

// RecordConflict counts a detected conflict by level.
func (c *Collector) RecordConflict(level string) {
	c.conflictsDetected.WithLabelValues(level).Inc()
}

// RecordEscalation counts an escalated conflict.
func (c *Collector) RecordEscalation() {
	c.conflictsEscalated.Inc()
}

// RecordConsensus observes a produced consensus confidence.
func (c *Collector) RecordConsensus(confidence float64) {
	c.consensusConfidence.Observe(confidence)
}

// RecordSessionIterations observes how many iterations a session took.
func (c *Collector) RecordSessionIterations(n int) {
	c.sessionIterations.Observe(float64(n))
}
