package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/greetd/core/delivery"
	"github.com/kilianp07/greetd/core/metrics"
	"github.com/kilianp07/greetd/core/model"
	"github.com/kilianp07/greetd/core/notify"
)

type contactList []model.Contact

func (c contactList) List() []model.Contact { return c }

var demo = contactList{
	{Name: "Jens", Email: "jens@python.org", PreferredTime: model.MustParseClock("08:00 AM")},
	{Name: "Nils", Email: "nils@goolge.com", PreferredTime: model.MustParseClock("10:30 AM")},
	{Name: "Knut", Email: "knut@microsoft.com", PreferredTime: model.MustParseClock("06:43 PM")},
}

type mockSender struct{ mock.Mock }

func (m *mockSender) Name() string { return "mock" }

func (m *mockSender) Send(_ context.Context, msg notify.Message) error {
	if err := notify.Validate(msg); err != nil {
		return err
	}
	return m.Called(msg.Contact.Email, msg.Text).Error(0)
}

type panicSender struct{}

func (panicSender) Name() string                               { return "panic" }
func (panicSender) Send(context.Context, notify.Message) error { panic("channel exploded") }

type countingLocker struct{ calls int }

func (l *countingLocker) WithLock(_ context.Context, fn func() error) error {
	l.calls++
	return fn()
}

type recordingSink struct {
	deliveries []metrics.DeliveryEvent
	runs       []metrics.RunEvent
}

func (r *recordingSink) RecordDelivery(ev metrics.DeliveryEvent) error {
	r.deliveries = append(r.deliveries, ev)
	return nil
}

func (r *recordingSink) RecordRun(ev metrics.RunEvent) error {
	r.runs = append(r.runs, ev)
	return nil
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 10, day, hour, minute, 0, 0, time.Local)
}

func newTestManager(t *testing.T, contacts ContactSource, sender notify.Sender, clk *clock, opts ...Option) (*Manager, *delivery.MemoryStore) {
	t.Helper()
	ResetMetrics(nil)
	store := delivery.NewMemoryStore()
	opts = append([]Option{WithClock(clk.now)}, opts...)
	m, err := NewManager(contacts, delivery.NewLog(store), sender, opts...)
	require.NoError(t, err)
	return m, store
}

func statuses(r Report) []Status {
	out := make([]Status, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Status
	}
	return out
}

func TestNewManagerRequiresCollaborators(t *testing.T) {
	_, err := NewManager(nil, delivery.NewLog(delivery.NewMemoryStore()), &mockSender{})
	assert.Error(t, err)
	_, err = NewManager(demo, nil, &mockSender{})
	assert.Error(t, err)
	_, err = NewManager(demo, delivery.NewLog(delivery.NewMemoryStore()), nil)
	assert.Error(t, err)
}

func TestForceSendsOncePerDay(t *testing.T) {
	clk := &clock{t: at(3, 8, 45)}
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	m, store := newTestManager(t, demo, s, clk)

	rep := m.Force(context.Background())
	assert.Equal(t, []Status{StatusSent, StatusSent, StatusSent}, statuses(rep))
	assert.Equal(t, 3, store.Len())
	s.AssertCalled(t, "Send", "jens@python.org", "Good morning Jens, hope you have a great day!")
	assert.NoError(t, rep.Err())

	clk.t = at(3, 20, 0)
	rep = m.Force(context.Background())
	assert.Equal(t, []Status{StatusSkipped, StatusSkipped, StatusSkipped}, statuses(rep))
	assert.Equal(t, "Message already sent to Jens today. Skipping...", rep.Outcomes[0].String())
	s.AssertNumberOfCalls(t, "Send", 3)
	assert.Equal(t, 3, store.Len())

	clk.t = at(4, 0, 1)
	rep = m.Force(context.Background())
	assert.Equal(t, 3, rep.Count(StatusSent))
	s.AssertCalled(t, "Send", "jens@python.org", "Good evening Jens, hope you're winding down and relaxing!")
	assert.Equal(t, 6, store.Len())
}

func TestForceOncePerDayOnTextLog(t *testing.T) {
	ResetMetrics(nil)
	clk := &clock{t: at(3, 9, 0)}
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	store, err := delivery.NewTextStore(filepath.Join(t.TempDir(), "log.txt"), nil)
	require.NoError(t, err)
	bob := contactList{{Name: "Bob (ops):x", Email: "bob@example.com", PreferredTime: model.MustParseClock("09:00 AM")}}
	m, err := NewManager(bob, delivery.NewLog(store), s, WithClock(clk.now))
	require.NoError(t, err)

	rep := m.Force(context.Background())
	assert.Equal(t, []Status{StatusSent}, statuses(rep))

	clk.t = at(3, 9, 5)
	rep = m.Force(context.Background())
	assert.Equal(t, []Status{StatusSkipped}, statuses(rep))
	s.AssertNumberOfCalls(t, "Send", 1)
}

func TestForceRecordsEntry(t *testing.T) {
	clk := &clock{t: at(3, 13, 0)}
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	m, store := newTestManager(t, demo[:1], s, clk)

	rep := m.Force(context.Background())
	require.Len(t, rep.Outcomes, 1)
	o := rep.Outcomes[0]
	assert.Equal(t, "Good afternoon Jens, hope you're having a productive day!", o.Message)
	assert.Equal(t, "Message sent to Jens at 2024-10-03 13:00:00.", o.String())

	entries, err := store.Query(context.Background(), delivery.Query{Email: "jens@python.org"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Jens", entries[0].Name)
	assert.Equal(t, o.Message, entries[0].Message)
	assert.Equal(t, "mock", entries[0].Channel)
	assert.NotEmpty(t, entries[0].ID)
}

func TestWindowedEvaluatesPreferredTime(t *testing.T) {
	clk := &clock{t: at(3, 10, 20)}
	s := &mockSender{}
	s.On("Send", "nils@goolge.com", mock.Anything).Return(nil).Once()
	m, store := newTestManager(t, demo, s, clk)

	rep := m.Windowed(context.Background())
	assert.Equal(t, []Status{StatusTooLate, StatusSent, StatusTooEarly}, statuses(rep))
	assert.Equal(t, "Preferred time for Jens (08:00 AM) is before the relevant window.", rep.Outcomes[0].String())
	assert.Equal(t, "Preferred time for Knut (06:43 PM) is after the relevant window.", rep.Outcomes[2].String())
	assert.Equal(t, 1, store.Len())
	s.AssertExpectations(t)

	// Already sent wins over the window check.
	rep = m.Windowed(context.Background())
	assert.Equal(t, StatusSkipped, rep.Outcomes[1].Status)
}

func TestWindowedBoundariesInclusive(t *testing.T) {
	nils := contactList{demo[1]}
	for _, tc := range []struct {
		name string
		now  time.Time
		want Status
	}{
		{"window start", at(3, 10, 15), StatusSent},
		{"window end", at(3, 10, 45), StatusSent},
		{"one minute early", at(3, 10, 14), StatusTooEarly},
		{"one minute late", at(3, 10, 46), StatusTooLate},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := &mockSender{}
			s.On("Send", mock.Anything, mock.Anything).Return(nil)
			m, _ := newTestManager(t, nils, s, &clock{t: tc.now})
			rep := m.Windowed(context.Background())
			assert.Equal(t, tc.want, rep.Outcomes[0].Status)
		})
	}
}

func TestWithWindowWidensWindow(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	m, _ := newTestManager(t, contactList{demo[1]}, s, &clock{t: at(3, 11, 0)}, WithWindow(time.Hour))
	rep := m.Windowed(context.Background())
	assert.Equal(t, StatusSent, rep.Outcomes[0].Status)
}

func TestFailuresAreIsolated(t *testing.T) {
	clk := &clock{t: at(3, 9, 0)}
	s := &mockSender{}
	s.On("Send", "nils@goolge.com", mock.Anything).Return(errors.New("relay down"))
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	contacts := contactList{demo[0], {Name: "Nobody"}, demo[1], demo[2]}
	m, store := newTestManager(t, contacts, s, clk)

	rep := m.Force(context.Background())
	assert.Equal(t, []Status{StatusSent, StatusFailed, StatusFailed, StatusSent}, statuses(rep))
	assert.ErrorIs(t, rep.Outcomes[1].Err, notify.ErrMissingEmail)
	assert.ErrorContains(t, rep.Outcomes[2].Err, "relay down")
	assert.Equal(t, "Error sending message to Nils (nils@goolge.com): send via mock: relay down", rep.Outcomes[2].String())
	assert.Equal(t, 2, store.Len())

	err := rep.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, notify.ErrMissingEmail)
	assert.Contains(t, err.Error(), "Nils")
}

func TestRecordFailureIsReported(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	m, store := newTestManager(t, demo[:1], s, &clock{t: at(3, 9, 0)})
	store.Err = errors.New("disk full")

	rep := m.Force(context.Background())
	assert.Equal(t, StatusFailed, rep.Outcomes[0].Status)
	assert.ErrorContains(t, rep.Outcomes[0].Err, "not recorded")
	assert.ErrorContains(t, rep.Outcomes[0].Err, "disk full")
}

func TestPanickingSenderFailsOnlyThatContact(t *testing.T) {
	m, store := newTestManager(t, demo, panicSender{}, &clock{t: at(3, 9, 0)})
	rep := m.Force(context.Background())
	assert.Equal(t, 3, rep.Count(StatusFailed))
	assert.ErrorContains(t, rep.Outcomes[0].Err, "channel exploded")
	assert.Zero(t, store.Len())
}

func TestCanceledContextFailsRemainingContacts(t *testing.T) {
	s := &mockSender{}
	m, store := newTestManager(t, demo, s, &clock{t: at(3, 9, 0)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := m.Force(ctx)
	assert.Equal(t, 3, rep.Count(StatusFailed))
	assert.ErrorIs(t, rep.Err(), context.Canceled)
	s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	assert.Zero(t, store.Len())
}

func TestLockHeldPerContact(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	l := &countingLocker{}
	m, _ := newTestManager(t, demo, s, &clock{t: at(3, 9, 0)}, WithLocker(l))
	m.Force(context.Background())
	assert.Equal(t, 3, l.calls)
}

func TestEmptyContactsProduceEmptyReport(t *testing.T) {
	m, _ := newTestManager(t, contactList{}, &mockSender{}, &clock{t: at(3, 9, 0)})
	rep := m.Force(context.Background())
	assert.Empty(t, rep.Outcomes)
	assert.NoError(t, rep.Err())
	assert.Equal(t, "force run: 0 contacts, 0 sent, 0 skipped, 0 outside window, 0 failed", rep.Summary())
}

func TestMetricsAreRecorded(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	sink := &recordingSink{}
	m, _ := newTestManager(t, demo, s, &clock{t: at(3, 10, 20)}, WithMetrics(sink))
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)

	m.Windowed(context.Background())

	require.Len(t, sink.deliveries, 3)
	assert.Equal(t, "too_late", sink.deliveries[0].Status)
	assert.Equal(t, "sent", sink.deliveries[1].Status)
	assert.Equal(t, "windowed", sink.deliveries[1].Mode)
	assert.Equal(t, "mock", sink.deliveries[1].Channel)
	require.Len(t, sink.runs, 1)
	assert.Equal(t, metrics.RunEvent{Mode: "windowed", Contacts: 3, Sent: 1, Deferred: 2, Time: at(3, 10, 20)}, sink.runs[0])

	assert.Equal(t, 1.0, testutil.ToFloat64(dispatchOutcomes.WithLabelValues("windowed", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(dispatchOutcomes.WithLabelValues("windowed", "too_early")))
	assert.Equal(t, 1.0, testutil.ToFloat64(dispatchRuns.WithLabelValues("windowed")))
	assert.Equal(t, 1, testutil.CollectAndCount(sendLatency))
}
