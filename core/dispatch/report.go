package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/greetd/core/model"
)

// Mode selects how a run treats preferred times.
type Mode int

const (
	// Force sends to every contact not yet greeted today.
	Force Mode = iota
	// Windowed sends only to contacts whose preferred time is inside the window.
	Windowed
)

func (m Mode) String() string {
	if m == Windowed {
		return "windowed"
	}
	return "force"
}

// ParseMode accepts "force" and "windowed".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "force":
		return Force, nil
	case "windowed", "window":
		return Windowed, nil
	}
	return Force, fmt.Errorf("unknown dispatch mode %q", s)
}

// Status is the result of dispatching to one contact.
type Status int

const (
	StatusSent Status = iota
	// StatusSkipped means the contact was already greeted today.
	StatusSkipped
	// StatusTooLate means the preferred time lies before the window.
	StatusTooLate
	// StatusTooEarly means the preferred time lies after the window.
	StatusTooEarly
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusSkipped:
		return "skipped"
	case StatusTooLate:
		return "too_late"
	case StatusTooEarly:
		return "too_early"
	default:
		return "failed"
	}
}

// Outcome records what happened to one contact.
type Outcome struct {
	Contact model.Contact
	Status  Status
	// Message is the greeting text; set when a send was attempted.
	Message string
	Err     error
	// At is the dispatch time used for the dedup check and window evaluation,
	// or the delivery time for sent greetings.
	At      time.Time
	Channel string
	Latency time.Duration
}

// String renders the one-line notice shown to the operator.
func (o Outcome) String() string {
	c := o.Contact
	switch o.Status {
	case StatusSent:
		return fmt.Sprintf("Message sent to %s at %s.", c.Name, o.At.Format("2006-01-02 15:04:05"))
	case StatusSkipped:
		return fmt.Sprintf("Message already sent to %s today. Skipping...", c.Name)
	case StatusTooLate:
		return fmt.Sprintf("Preferred time for %s (%s) is before the relevant window.", c.Name, c.PreferredTime)
	case StatusTooEarly:
		return fmt.Sprintf("Preferred time for %s (%s) is after the relevant window.", c.Name, c.PreferredTime)
	default:
		who := c.Name
		if c.Email != "" {
			who = fmt.Sprintf("%s (%s)", c.Name, c.Email)
		}
		return fmt.Sprintf("Error sending message to %s: %v", who, o.Err)
	}
}

// Report aggregates the outcomes of a run in contact order.
type Report struct {
	Mode     Mode
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

// Count returns the number of outcomes with status s.
func (r Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Err joins the errors of all failed outcomes, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed && o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Contact.Name, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Summary is a one-line count of the run.
func (r Report) Summary() string {
	return fmt.Sprintf("%s run: %d contacts, %d sent, %d skipped, %d outside window, %d failed",
		r.Mode, len(r.Outcomes), r.Count(StatusSent), r.Count(StatusSkipped),
		r.Count(StatusTooEarly)+r.Count(StatusTooLate), r.Count(StatusFailed))
}
