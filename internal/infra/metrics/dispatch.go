package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		dispatchAttemptsTotal,
		dispatchJobsTotal,
		dispatchJobDuration,
	)
}

var (
	dispatchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_attempts_total",
			Help:      "Per-recipient delivery attempts by dispatch kind and outcome.",
		},
		[]string{"kind", "status"}, // kind: 'reminder', 'broadcast'; status: 'sent', 'failed'
	)

	dispatchJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_jobs_total",
			Help:      "Dispatch jobs processed, labeled by kind and status.",
		},
		[]string{"kind", "status"}, // status: 'completed', 'failed'
	)

	dispatchJobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_job_duration_seconds",
			Help:      "Wall-clock duration of dispatch jobs.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180, 600, 1800},
		},
		[]string{"kind"},
	)
)

func ObserveDispatch(kind string, sent, failed int, d time.Duration) {
	dispatchAttemptsTotal.WithLabelValues(norm(kind), "sent").Add(float64(sent))
	dispatchAttemptsTotal.WithLabelValues(norm(kind), "failed").Add(float64(failed))
	dispatchJobDuration.WithLabelValues(norm(kind)).Observe(d.Seconds())
}

func IncDispatchJob(kind, status string) {
	dispatchJobsTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}
