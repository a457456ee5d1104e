package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/user"
	"strconv"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"

	corenotify "github.com/kilianp07/greetd/core/notify"
	"github.com/kilianp07/greetd/infra/logger"
)

// SMTPConfig configures the e-mail channel.
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Sender   string `json:"sender"`
	Username string `json:"username"`
	Password string `json:"password"`
	Subject  string `json:"subject"`
}

// SetDefaults fills host, port, subject and derives a sender address from the
// local user and hostname when none is configured.
func (c *SMTPConfig) SetDefaults() error {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 25
	}
	if c.Subject == "" {
		c.Subject = "Greetings"
	}
	if c.Sender == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return err
		}
		usr, err := user.Current()
		if err != nil {
			return err
		}
		c.Sender = usr.Username + "@" + hostname
	}
	return nil
}

type sendMailFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

// SMTPSender delivers greetings as plain-text e-mails.
type SMTPSender struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
	log      logger.Logger
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail, log: logger.New("smtp")}, nil
}

func (s *SMTPSender) Name() string { return "smtp" }

// Server returns host:port of the relay.
func (s *SMTPSender) Server() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

func (s *SMTPSender) Send(ctx context.Context, m corenotify.Message) error {
	if err := corenotify.Validate(m); err != nil {
		return err
	}
	b := enmime.Builder().
		From("", s.cfg.Sender).
		To(m.Contact.Name, m.Contact.Email).
		Subject(s.cfg.Subject).
		Text([]byte(m.Text))
	if !m.At.IsZero() {
		b = b.Date(m.At)
	}
	part, err := b.Build()
	if err != nil {
		return fmt.Errorf("build mail: %w", err)
	}
	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}
	var auth sasl.Client
	if s.cfg.Username != "" {
		auth = sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)
	}
	if err := s.sendMail(s.Server(), auth, s.cfg.Sender, []string{m.Contact.Email}, &buf); err != nil {
		return fmt.Errorf("smtp %s: %w", s.Server(), err)
	}
	s.log.Infof("mail sent to %s", m.Contact.Email)
	return nil
}
