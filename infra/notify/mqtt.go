package notify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	corenotify "github.com/kilianp07/greetd/core/notify"
	"github.com/kilianp07/greetd/infra/logger"
)

// MQTTConfig defines the connection parameters for the MQTT channel.
type MQTTConfig struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	Retain      bool        `json:"retain"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	TimeoutMS   int         `json:"timeout_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults applies sane defaults.
func (c *MQTTConfig) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = fmt.Sprintf("greetd-%d", time.Now().UnixNano())
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "greetings"
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 5000
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTSender publishes each greeting as a JSON document on <prefix>/<email>.
type MQTTSender struct {
	cli     pahoClient
	cfg     MQTTConfig
	timeout time.Duration
	log     logger.Logger
}

// Greeting is the published payload.
type Greeting struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// NewMQTTSender connects to the broker.
func NewMQTTSender(cfg MQTTConfig) (*MQTTSender, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }

	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	c := newMQTTClient(opts)
	if token := c.Connect(); !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect %s: timeout", cfg.Broker)
	} else if token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	return &MQTTSender{cli: c, cfg: cfg, timeout: timeout, log: log}, nil
}

// NewClientOptions builds mqtt client options from MQTTConfig.
func NewClientOptions(cfg MQTTConfig) (*paho.ClientOptions, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt: broker is required")
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c MQTTConfig) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (s *MQTTSender) Name() string { return "mqtt" }

// Topic returns the topic a greeting for email is published on.
func (s *MQTTSender) Topic(email string) string {
	return s.cfg.TopicPrefix + "/" + email
}

// Send publishes once; failures are reported to the caller without retry.
func (s *MQTTSender) Send(ctx context.Context, m corenotify.Message) error {
	if err := corenotify.Validate(m); err != nil {
		return err
	}
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}
	payload, err := json.Marshal(Greeting{
		ID:        uuid.NewString(),
		Name:      m.Contact.Name,
		Email:     m.Contact.Email,
		Message:   m.Text,
		Timestamp: at.UnixMilli(),
	})
	if err != nil {
		return err
	}
	topic := s.Topic(m.Contact.Email)
	token := s.cli.Publish(topic, s.cfg.QoS, s.cfg.Retain, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.timeout):
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	s.log.Infof("greeting published to %s", topic)
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSender) Close() error {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
	return nil
}
