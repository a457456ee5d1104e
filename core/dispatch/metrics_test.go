package dispatch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegistration(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)
	// touch metrics so they are exported
	dispatchOutcomes.WithLabelValues("force", "sent").Inc()
	sendLatency.WithLabelValues("console").Observe(0.1)
	dispatchRuns.WithLabelValues("force").Inc()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[*mf.Name] = true
	}
	expected := []string{
		"dispatch_outcomes_total",
		"dispatch_send_latency_seconds",
		"dispatch_runs_total",
	}
	for _, n := range expected {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}
