package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSink struct {
	deliveries int
	runs       int
	err        error
}

func (r *recordSink) RecordDelivery(DeliveryEvent) error {
	r.deliveries++
	return r.err
}

func (r *recordSink) RecordRun(RunEvent) error {
	r.runs++
	return nil
}

type deliveryOnly struct{ count int }

func (d *deliveryOnly) RecordDelivery(DeliveryEvent) error {
	d.count++
	return nil
}

// TestMultiSink ensures events are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &deliveryOnly{}
	m := NewMultiSink(s1, s2)
	require.NoError(t, m.RecordDelivery(DeliveryEvent{Email: "jens@python.org"}))
	require.NoError(t, m.RecordRun(RunEvent{Mode: "force"}))
	assert.Equal(t, 1, s1.deliveries)
	assert.Equal(t, 1, s1.runs)
	assert.Equal(t, 1, s2.count)
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	err := NewMultiSink(s1, s2).RecordDelivery(DeliveryEvent{})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, s2.deliveries)
}
