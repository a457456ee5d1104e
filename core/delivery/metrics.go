package delivery

import "github.com/prometheus/client_golang/prometheus"

var malformedLines *prometheus.CounterVec

func newCollectors() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_log_malformed_lines_total",
			Help: "Number of delivery log lines skipped because they could not be parsed",
		},
		[]string{"backend"},
	)
}

func init() {
	malformedLines = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers delivery log metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(malformedLines)
}

// ResetMetrics reinitializes the collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	malformedLines = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
