package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dispatchOutcomes *prometheus.CounterVec
	sendLatency      *prometheus.HistogramVec
	dispatchRuns     *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec, *prometheus.CounterVec) {
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_outcomes_total",
			Help: "Per-contact dispatch outcomes",
		},
		[]string{"mode", "status"},
	)
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_send_latency_seconds",
			Help:    "Time spent delivering a greeting through the channel",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_runs_total",
			Help: "Number of dispatch runs",
		},
		[]string{"mode"},
	)
	return outcomes, lat, runs
}

func init() {
	dispatchOutcomes, sendLatency, dispatchRuns = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(dispatchOutcomes, sendLatency, dispatchRuns)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	dispatchOutcomes, sendLatency, dispatchRuns = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
