package model

import (
	"fmt"
	"strings"
	"time"
)

// clockLayout accepts one or two digit hours, e.g. "8:00 AM" and "08:00 AM".
const clockLayout = "3:04 PM"

// Clock is a wall-clock time of day without a date.
type Clock struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// DefaultPreferredTime is used when a contact is created without a preferred time.
var DefaultPreferredTime = Clock{Hour: 8}

// ParseClock parses a 12-hour "HH:MM AM|PM" string. The meridiem is case-insensitive.
func ParseClock(s string) (Clock, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	t, err := time.Parse(clockLayout, norm)
	// time.Parse accepts hour 0 for 12-hour layouts.
	if err != nil || strings.HasPrefix(norm, "0:") || strings.HasPrefix(norm, "00:") {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustParseClock is like ParseClock but panics on error. Intended for tests and constants.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// On combines the clock with the calendar date of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

// String formats the clock as "08:00 AM".
func (c Clock) String() string {
	h := c.Hour % 12
	if h == 0 {
		h = 12
	}
	meridiem := "AM"
	if c.Hour >= 12 {
		meridiem = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", h, c.Minute, meridiem)
}

func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
