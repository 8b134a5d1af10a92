package routing

import "github.com/prometheus/client_golang/prometheus"

var (
	runsTotal       *prometheus.CounterVec
	solverFailures  prometheus.Counter
	runDuration     prometheus.Histogram
	unassignedJobs  prometheus.Gauge
	matrixFallbacks prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, prometheus.Histogram, prometheus.Gauge, prometheus.Counter) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_runs_total",
			Help: "Number of routing runs by planning strategy",
		},
		[]string{"strategy"},
	)
	fail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "routing_solver_failures_total",
			Help: "Number of solver failures recovered by the greedy planner",
		},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "routing_run_duration_seconds",
			Help:    "Wall time of a routing run",
			Buckets: prometheus.DefBuckets,
		},
	)
	un := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "routing_unassigned_jobs",
			Help: "Jobs left unassigned by the last routing run",
		},
	)
	mf := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "routing_matrix_fallbacks_total",
			Help: "Number of runs that used haversine estimates instead of road durations",
		},
	)
	return runs, fail, dur, un, mf
}

func init() {
	runsTotal, solverFailures, runDuration, unassignedJobs, matrixFallbacks = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers routing metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(runsTotal, solverFailures, runDuration, unassignedJobs, matrixFallbacks)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	runsTotal, solverFailures, runDuration, unassignedJobs, matrixFallbacks = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
