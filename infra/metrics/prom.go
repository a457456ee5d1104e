package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/greetd/core/metrics"
)

// PromSink records delivery outcomes in Prometheus metrics.
type PromSink struct {
	deliveries *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	lastRun    *prometheus.GaugeVec
}

// NewPromSink registers delivery metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately, see StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greetd_deliveries_total",
		Help: "Dispatch outcomes per contact",
	}, []string{"email", "mode", "status", "channel"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "greetd_send_latency_seconds",
		Help:    "Time spent in the channel for successful sends",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	lastRun := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "greetd_last_run_contacts",
		Help: "Contacts per status in the most recent dispatch run",
	}, []string{"mode", "status"})

	var err error
	if deliveries, err = register(reg, deliveries); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if lastRun, err = register(reg, lastRun); err != nil {
		return nil, err
	}
	return &PromSink{deliveries: deliveries, latency: latency, lastRun: lastRun}, nil
}

// register returns the already registered collector when c was registered before.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDelivery increments the counter for the outcome.
func (s *PromSink) RecordDelivery(ev coremetrics.DeliveryEvent) error {
	s.deliveries.WithLabelValues(ev.Email, ev.Mode, ev.Status, ev.Channel).Inc()
	if ev.Latency > 0 {
		s.latency.WithLabelValues(ev.Channel).Observe(ev.Latency.Seconds())
	}
	return nil
}

// RecordRun sets the per-status gauges of the run's mode.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.lastRun.WithLabelValues(ev.Mode, "sent").Set(float64(ev.Sent))
	s.lastRun.WithLabelValues(ev.Mode, "skipped").Set(float64(ev.Skipped))
	s.lastRun.WithLabelValues(ev.Mode, "deferred").Set(float64(ev.Deferred))
	s.lastRun.WithLabelValues(ev.Mode, "failed").Set(float64(ev.Failed))
	return nil
}
