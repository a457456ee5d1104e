// Package notify defines how greetings leave the process. Concrete channels
// (console, SMTP, MQTT) live in infra/notify and register themselves here.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/greetd/core/factory"
	"github.com/kilianp07/greetd/core/model"
)

// ErrMissingEmail is returned when a greeting is addressed to a contact without email.
var ErrMissingEmail = errors.New("email address missing")

// Message is a greeting ready to be delivered.
type Message struct {
	Contact model.Contact
	Text    string
	At      time.Time
}

// Sender delivers greetings over one channel.
type Sender interface {
	// Name identifies the channel in the delivery log.
	Name() string
	Send(ctx context.Context, m Message) error
}

// Validate checks that m can be addressed.
func Validate(m Message) error {
	if strings.TrimSpace(m.Contact.Email) == "" {
		return fmt.Errorf("send to %s: %w", m.Contact.Name, ErrMissingEmail)
	}
	return nil
}

var senders = factory.NewRegistry[Sender]()

// RegisterSender adds a channel factory identified by name.
func RegisterSender(name string, f factory.Factory[Sender]) error {
	return senders.Register(name, f)
}

// NewSender creates the Sender described by cfg. An empty type selects "console".
func NewSender(cfg factory.ModuleConfig) (Sender, error) {
	if cfg.Type == "" {
		cfg.Type = "console"
	}
	return senders.Create(cfg)
}

// Channels lists the registered channel names.
func Channels() []string { return senders.Names() }
