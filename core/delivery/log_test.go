package delivery

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/greetd/core/model"
)

var jens = model.Contact{Name: "Jens", Email: "jens@python.org", PreferredTime: model.DefaultPreferredTime}

func collect(t *testing.T, l *Log, now time.Time, days int) []string {
	t.Helper()
	var lines []string
	for line, err := range l.Recent(context.Background(), now, days) {
		require.NoError(t, err)
		lines = append(lines, line)
	}
	return lines
}

func TestWasSentTodayAbsentLog(t *testing.T) {
	s, err := NewTextStore(filepath.Join(t.TempDir(), "log.txt"), nil)
	require.NoError(t, err)
	l := NewLog(s)
	for _, c := range []model.Contact{jens, {Name: "Nils", Email: "nils@goolge.com"}} {
		sent, err := l.WasSentToday(context.Background(), c, time.Now())
		require.NoError(t, err)
		assert.False(t, sent)
	}
}

func TestRecordThenWasSentToday(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 10, 3, 8, 45, 12, 0, time.Local)
	for name, s := range backends(t) {
		l := NewLog(s)
		require.NoError(t, l.Record(ctx, Entry{Timestamp: now, Name: jens.Name, Email: jens.Email, Message: "hi"}), name)

		sent, err := l.WasSentToday(ctx, jens, now.Add(time.Hour))
		require.NoError(t, err, name)
		assert.True(t, sent, name)

		sent, err = l.WasSentToday(ctx, jens, now.AddDate(0, 0, 1))
		require.NoError(t, err, name)
		assert.False(t, sent, "%s: next day", name)

		sent, err = l.WasSentToday(ctx, model.Contact{Name: "Jens", Email: "other@python.org"}, now)
		require.NoError(t, err, name)
		assert.False(t, sent, "%s: other email", name)
	}
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	m := NewMemoryStore()
	l := NewLog(m)
	before := time.Now()
	require.NoError(t, l.Record(context.Background(), Entry{Name: "Jens", Email: jens.Email}))
	out, err := m.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].ID)
	assert.False(t, out[0].Timestamp.Before(before.Truncate(time.Microsecond)))
	assert.Same(t, m, l.Store())
}

func TestRecordPropagatesWriteFailure(t *testing.T) {
	m := NewMemoryStore()
	m.Err = errors.New("disk full")
	err := NewLog(m).Record(context.Background(), Entry{Name: "Jens", Email: jens.Email})
	assert.EqualError(t, err, "disk full")
}

func TestRecentTodayAndYesterday(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 10, 3, 8, 0, 0, 0, time.Local)
	for name, s := range backends(t) {
		l := NewLog(s)
		for i, offset := range []int{-2, -1, 0, 1} {
			e := Entry{
				Timestamp: now.AddDate(0, 0, offset),
				Name:      "Jens",
				Email:     jens.Email,
				Message:   []string{"two days ago", "yesterday", "today", "tomorrow"}[i],
			}
			require.NoError(t, l.Record(ctx, e), name)
		}
		lines := collect(t, l, now, 2)
		require.Len(t, lines, 2, name)
		assert.Contains(t, lines[0], "yesterday", name)
		assert.Contains(t, lines[1], "today", name)

		assert.Len(t, collect(t, l, now, 0), 2, name)
		assert.Len(t, collect(t, l, now, 1), 1, name)
		assert.Len(t, collect(t, l, now, 3), 3, name)
	}
}

func TestRecentIsLazyAndRerunnable(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemoryStore()
	l := NewLog(m)
	seq := l.Recent(ctx, now, 2)

	require.NoError(t, l.Record(ctx, Entry{Timestamp: now, Name: "Jens", Email: jens.Email, Message: "a"}))
	n := 0
	for range seq {
		n++
	}
	assert.Equal(t, 1, n)

	require.NoError(t, l.Record(ctx, Entry{Timestamp: now, Name: "Jens", Email: jens.Email, Message: "b"}))
	n = 0
	for range seq {
		n++
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, m.Len())
}

func TestRecentKeepsRawTextLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	s, err := NewTextStore(path, nil)
	require.NoError(t, err)
	now := time.Date(2024, 10, 3, 8, 0, 0, 0, time.Local)
	raw := "2024-10-03 07:59:00 - Sent to Jens (jens@python.org): legacy"
	require.NoError(t, appendLine(path, []byte(raw+"\n")))

	lines := collect(t, NewLog(s), now, 2)
	assert.Equal(t, []string{raw}, lines)
}

func TestRecentStopsEarly(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := NewLog(NewMemoryStore())
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Record(ctx, Entry{Timestamp: now, Name: "Jens", Email: jens.Email}))
	}
	n := 0
	for range l.Recent(ctx, now, 1) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2024, 10, 3, 23, 59, 59, 999, time.Local))
	assert.Equal(t, time.Date(2024, 10, 3, 0, 0, 0, 0, time.Local), got)
}
