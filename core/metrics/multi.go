package metrics

// MultiSink fans delivery events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDelivery forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDelivery(ev DeliveryEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDelivery(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun forwards run summaries to the sinks that support them.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RunRecorder); ok {
			if err := rec.RecordRun(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
