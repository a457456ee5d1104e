// Package window decides whether a preferred time of day falls within the
// dispatch window around now.
package window

import (
	"time"

	"github.com/kilianp07/greetd/core/model"
)

// Width is the default half-width of the dispatch window.
const Width = 15 * time.Minute

// Position is the location of a preferred time relative to the window.
type Position int

const (
	Eligible Position = iota
	// Before means the preferred time is earlier than the window start.
	Before
	// After means the preferred time is later than the window end.
	After
)

func (p Position) String() string {
	switch p {
	case Eligible:
		return "eligible"
	case Before:
		return "before"
	default:
		return "after"
	}
}

// Evaluate places preferred on now's date and compares it with [now-Width, now+Width].
// There is no day wraparound: 11:00 PM evaluated at 12:05 AM is After.
func Evaluate(preferred model.Clock, now time.Time) Position {
	return EvaluateWithin(preferred, now, Width)
}

// EvaluateWithin is Evaluate with a custom half-width. Bounds are inclusive.
func EvaluateWithin(preferred model.Clock, now time.Time, width time.Duration) Position {
	at := preferred.On(now)
	start, end := now.Add(-width), now.Add(width)
	switch {
	case at.Before(start):
		return Before
	case at.After(end):
		return After
	default:
		return Eligible
	}
}
