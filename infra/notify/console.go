package notify

import (
	"context"
	"fmt"
	"io"

	corenotify "github.com/kilianp07/greetd/core/notify"
)

// ConsoleSender prints greetings instead of delivering them.
type ConsoleSender struct {
	w io.Writer
}

func NewConsoleSender(w io.Writer) *ConsoleSender { return &ConsoleSender{w: w} }

func (s *ConsoleSender) Name() string { return "console" }

func (s *ConsoleSender) Send(ctx context.Context, m corenotify.Message) error {
	if err := corenotify.Validate(m); err != nil {
		return err
	}
	_, err := fmt.Fprintf(s.w, "Sending message to %s: %s\n", m.Contact.Email, m.Text)
	return err
}
