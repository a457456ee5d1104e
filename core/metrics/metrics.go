package metrics

import "time"

// DeliveryEvent is the outcome of one contact in a dispatch run.
type DeliveryEvent struct {
	Name    string
	Email   string
	Channel string
	Mode    string
	Status  string
	Latency time.Duration
	Error   string
	Time    time.Time
}

// MetricsSink records delivery outcomes for observability purposes.
type MetricsSink interface {
	RecordDelivery(ev DeliveryEvent) error
}

// RunEvent summarises a complete dispatch run.
type RunEvent struct {
	Mode     string
	Contacts int
	Sent     int
	Skipped  int
	Deferred int
	Failed   int
	Duration time.Duration
	Time     time.Time
}

// RunRecorder is implemented by sinks able to record run summaries.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordDelivery(DeliveryEvent) error { return nil }
func (NopSink) RecordRun(RunEvent) error           { return nil }
