// Package greeting builds the time-of-day greeting text.
package greeting

import (
	"fmt"
	"time"
)

// Period is a part of the day.
type Period int

const (
	Morning Period = iota
	Afternoon
	Evening
)

func (p Period) String() string {
	switch p {
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	default:
		return "evening"
	}
}

// PeriodAt maps an hour (0-23) to its period: [5,12) morning, [12,18) afternoon, evening otherwise.
func PeriodAt(hour int) Period {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	default:
		return Evening
	}
}

// Generate returns the greeting for name as sent at the given time.
func Generate(name string, at time.Time) string {
	switch PeriodAt(at.Hour()) {
	case Morning:
		return fmt.Sprintf("Good morning %s, hope you have a great day!", name)
	case Afternoon:
		return fmt.Sprintf("Good afternoon %s, hope you're having a productive day!", name)
	default:
		return fmt.Sprintf("Good evening %s, hope you're winding down and relaxing!", name)
	}
}
