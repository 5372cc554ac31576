package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Kafka KafkaMetrics
	Sweep SweepMetrics
	API   APIMetrics
}

type KafkaMetrics struct {
	ProducerAttemptLatencySeconds *prometheus.HistogramVec
	ProducerOperationsTotal       *prometheus.CounterVec
	ProducerSuccessAttempts       *prometheus.HistogramVec
}

type SweepMetrics struct {
	// Completion orchestrator
	CasesCompletedTotal *prometheus.CounterVec
	CasesBlockedTotal   prometheus.Counter
	CaseFailuresTotal   *prometheus.CounterVec

	// Outbox dispatcher
	OutboxDispatchedTotal *prometheus.CounterVec

	// Scheduler lock
	LockAcquisitionsTotal *prometheus.CounterVec

	SweepDurationSeconds *prometheus.HistogramVec
}

type APIMetrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Kafka: KafkaMetrics{
			ProducerAttemptLatencySeconds: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "caseflow",
				Subsystem: "kafka",
				Name:      "producer_attempt_latency_seconds",
				Help:      "Latency per single produce attempt.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"topic", "result"}), // ok|error

			ProducerOperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: "caseflow",
				Subsystem: "kafka",
				Name:      "producer_operations_total",
				Help:      "Total produce operations (one call) by result.",
			}, []string{"topic", "result"}), // success|failed|permanent|canceled

			ProducerSuccessAttempts: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "caseflow",
				Subsystem: "kafka",
				Name:      "producer_success_attempts",
				Help:      "Attempt number on which produce operation succeeded.",
				Buckets:   []float64{1, 2, 3, 4, 5},
			}, []string{"topic"}),
		},

		Sweep: SweepMetrics{
			CasesCompletedTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: "caseflow",
				Subsystem: "sweep",
				Name:      "cases_completed_total",
				Help:      "Cases completed by the orchestrator, by case type.",
			}, []string{"case_type"}),

			CasesBlockedTotal: f.NewCounter(prometheus.CounterOpts{
				Namespace: "caseflow",
				Subsystem: "sweep",
				Name:      "cases_blocked_total",
				Help:      "Completion attempts skipped because documents were not finalized.",
			}),

			CaseFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: "caseflow",
				Subsystem: "sweep",
				Name:      "case_failures_total",
				Help:      "Failed completion attempts by failure kind.",
			}, []string{"kind"}), // invariant|adapter|storage

			OutboxDispatchedTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: "caseflow",
				Subsystem: "outbox",
				Name:      "dispatched_total",
				Help:      "Outbox dispatch attempts by event kind and result.",
			}, []string{"kind", "result"}), // delivered|failed

			LockAcquisitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: "caseflow",
				Subsystem: "scheduler",
				Name:      "lock_acquisitions_total",
				Help:      "Distributed lock attempts per job by result.",
			}, []string{"job", "result"}), // acquired|skipped|error

			SweepDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "caseflow",
				Subsystem: "sweep",
				Name:      "duration_seconds",
				Help:      "Duration of one scheduled sweep body.",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			}, []string{"job"}),
		},

		API: APIMetrics{
			HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: "caseflow",
				Subsystem: "api",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, path and status.",
			}, []string{"method", "path", "status"}),

			HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "caseflow",
				Subsystem: "api",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			}, []string{"method", "path", "status"}),
		},
	}
}
