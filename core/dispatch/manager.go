// Package dispatch sends the daily greetings: one pass over the contacts,
// deduplicated against the delivery log.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/greetd/core/delivery"
	"github.com/kilianp07/greetd/core/greeting"
	"github.com/kilianp07/greetd/core/logger"
	"github.com/kilianp07/greetd/core/metrics"
	"github.com/kilianp07/greetd/core/model"
	"github.com/kilianp07/greetd/core/monitoring"
	"github.com/kilianp07/greetd/core/notify"
	"github.com/kilianp07/greetd/core/window"
)

// ContactSource provides the contacts of a run in dispatch order.
type ContactSource interface {
	List() []model.Contact
}

// Manager runs force and windowed dispatch.
type Manager struct {
	contacts ContactSource
	log      *delivery.Log
	locker   delivery.Locker
	sender   notify.Sender
	width    time.Duration
	metrics  metrics.MetricsSink
	logger   logger.Logger
	now      func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithLocker sets the lock held around each check-send-record sequence.
func WithLocker(l delivery.Locker) Option {
	return func(m *Manager) {
		if l != nil {
			m.locker = l
		}
	}
}

// WithWindow sets the half-width of the windowed mode. Non-positive values keep window.Width.
func WithWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.width = d
		}
	}
}

func WithMetrics(s metrics.MetricsSink) Option {
	return func(m *Manager) {
		if s != nil {
			m.metrics = s
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a manager. contacts, log and sender are required.
func NewManager(contacts ContactSource, log *delivery.Log, sender notify.Sender, opts ...Option) (*Manager, error) {
	if contacts == nil || log == nil || sender == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewManager")
	}
	m := &Manager{
		contacts: contacts,
		log:      log,
		locker:   delivery.NopLocker{},
		sender:   sender,
		width:    window.Width,
		metrics:  metrics.NopSink{},
		logger:   logger.Nop{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// Force sends to every contact not greeted today.
func (m *Manager) Force(ctx context.Context) Report { return m.Run(ctx, Force) }

// Windowed sends to contacts not greeted today whose preferred time is within the window.
func (m *Manager) Windowed(ctx context.Context) Report { return m.Run(ctx, Windowed) }

// Run processes all contacts in order. A failure is recorded in the contact's
// outcome and never stops the run; once ctx is done the remaining contacts fail
// with ctx's error.
func (m *Manager) Run(ctx context.Context, mode Mode) Report {
	rep := Report{Mode: mode, Started: m.now()}
	for _, c := range m.contacts.List() {
		var o Outcome
		if err := ctx.Err(); err != nil {
			o = Outcome{Contact: c, Status: StatusFailed, Err: err, At: m.now()}
		} else {
			o = m.dispatchOne(ctx, c, mode)
		}
		m.observe(mode, o)
		rep.Outcomes = append(rep.Outcomes, o)
	}
	rep.Finished = m.now()
	dispatchRuns.WithLabelValues(mode.String()).Inc()
	if rr, ok := m.metrics.(metrics.RunRecorder); ok {
		ev := metrics.RunEvent{
			Mode:     mode.String(),
			Contacts: len(rep.Outcomes),
			Sent:     rep.Count(StatusSent),
			Skipped:  rep.Count(StatusSkipped),
			Deferred: rep.Count(StatusTooEarly) + rep.Count(StatusTooLate),
			Failed:   rep.Count(StatusFailed),
			Duration: rep.Finished.Sub(rep.Started),
			Time:     rep.Finished,
		}
		if err := rr.RecordRun(ev); err != nil {
			m.logger.Warnf("run metrics error: %v", err)
		}
	}
	m.logger.Infof("%s", rep.Summary())
	return rep
}

// dispatchOne checks, sends and records under the lock. Panics raised by the
// channel are turned into a failed outcome.
func (m *Manager) dispatchOne(ctx context.Context, c model.Contact, mode Mode) (o Outcome) {
	o = Outcome{Contact: c, Channel: m.sender.Name()}
	defer func() {
		if r := recover(); r != nil {
			o.Status = StatusFailed
			o.Err = fmt.Errorf("panic: %v", r)
		}
	}()

	err := m.locker.WithLock(ctx, func() error {
		now := m.now()
		o.At = now
		sent, err := m.log.WasSentToday(ctx, c, now)
		if err != nil {
			return fmt.Errorf("check delivery log: %w", err)
		}
		if sent {
			o.Status = StatusSkipped
			return nil
		}
		if mode == Windowed {
			switch window.EvaluateWithin(c.PreferredTime, now, m.width) {
			case window.Before:
				o.Status = StatusTooLate
				return nil
			case window.After:
				o.Status = StatusTooEarly
				return nil
			}
		}

		o.Message = greeting.Generate(c.Name, now)
		start := time.Now()
		if err := m.sender.Send(ctx, notify.Message{Contact: c, Text: o.Message, At: now}); err != nil {
			return fmt.Errorf("send via %s: %w", m.sender.Name(), err)
		}
		o.Latency = time.Since(start)

		o.At = m.now()
		entry := delivery.Entry{
			Timestamp: o.At,
			Name:      c.Name,
			Email:     c.Email,
			Message:   o.Message,
			Channel:   m.sender.Name(),
		}
		if err := m.log.Record(ctx, entry); err != nil {
			return fmt.Errorf("greeting delivered but not recorded: %w", err)
		}
		o.Status = StatusSent
		return nil
	})
	if err != nil {
		o.Status = StatusFailed
		o.Err = err
	}
	return o
}

func (m *Manager) observe(mode Mode, o Outcome) {
	dispatchOutcomes.WithLabelValues(mode.String(), o.Status.String()).Inc()
	if o.Status == StatusSent {
		sendLatency.WithLabelValues(o.Channel).Observe(o.Latency.Seconds())
	}

	ev := metrics.DeliveryEvent{
		Name:    o.Contact.Name,
		Email:   o.Contact.Email,
		Channel: o.Channel,
		Mode:    mode.String(),
		Status:  o.Status.String(),
		Latency: o.Latency,
		Time:    o.At,
	}
	if o.Err != nil {
		ev.Error = o.Err.Error()
	}
	if err := m.metrics.RecordDelivery(ev); err != nil {
		m.logger.Warnf("delivery metrics error: %v", err)
	}

	switch o.Status {
	case StatusSent:
		m.logger.Infof("greeting sent to %s via %s", o.Contact.Email, o.Channel)
	case StatusFailed:
		m.logger.Errorf("dispatch to %s failed: %v", o.Contact.Email, o.Err)
		if !errors.Is(o.Err, context.Canceled) {
			monitoring.CaptureException(o.Err, map[string]string{
				"component": "dispatch",
				"mode":      mode.String(),
				"channel":   o.Channel,
				"email":     o.Contact.Email,
			})
		}
	default:
		m.logger.Debugw("greeting not sent", map[string]any{
			"email":  o.Contact.Email,
			"status": o.Status.String(),
		})
	}
}
