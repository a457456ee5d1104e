package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/greetd/core/factory"
	"github.com/kilianp07/greetd/core/model"
	corenotify "github.com/kilianp07/greetd/core/notify"
)

var jens = model.Contact{Name: "Jens", Email: "jens@python.org", PreferredTime: model.DefaultPreferredTime}

func msg(c model.Contact) corenotify.Message {
	return corenotify.Message{
		Contact: c,
		Text:    "Good morning Jens, hope you have a great day!",
		At:      time.Date(2024, 10, 3, 8, 45, 0, 0, time.Local),
	}
}

func TestConsoleSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSender(&buf)
	require.NoError(t, s.Send(context.Background(), msg(jens)))
	assert.Equal(t, "Sending message to jens@python.org: Good morning Jens, hope you have a great day!\n", buf.String())
	assert.Equal(t, "console", s.Name())

	err := s.Send(context.Background(), msg(model.Contact{Name: "Nobody"}))
	assert.ErrorIs(t, err, corenotify.ErrMissingEmail)
}

func TestSMTPSender(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "mail.example.org", Port: 587, Sender: "greetd@example.org", Username: "u", Password: "p"})
	require.NoError(t, err)
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotAuth sasl.Client
		body    []byte
	)
	s.sendMail = func(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
		gotAddr, gotAuth, gotFrom, gotTo = addr, a, from, to
		body, err = io.ReadAll(r)
		return err
	}
	require.NoError(t, s.Send(context.Background(), msg(jens)))
	assert.Equal(t, "mail.example.org:587", gotAddr)
	assert.Equal(t, "greetd@example.org", gotFrom)
	assert.Equal(t, []string{"jens@python.org"}, gotTo)
	assert.NotNil(t, gotAuth)
	assert.Contains(t, string(body), "Subject: Greetings")
	assert.Contains(t, string(body), "jens@python.org")
	assert.Contains(t, string(body), "Good morning Jens, hope you have a great day!")
}

func TestSMTPSenderErrors(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Sender: "greetd@example.org"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:25", s.Server())
	assert.Equal(t, "smtp", s.Name())

	s.sendMail = func(string, sasl.Client, string, []string, io.Reader) error { return errors.New("relay denied") }
	assert.ErrorContains(t, s.Send(context.Background(), msg(jens)), "relay denied")
	assert.ErrorIs(t, s.Send(context.Background(), msg(model.Contact{Name: "Jens"})), corenotify.ErrMissingEmail)
}

type mockToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *mockToken {
	ch := make(chan struct{})
	close(ch)
	return &mockToken{err: err, done: ch}
}

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Error() error                   { return t.err }
func (t *mockToken) Done() <-chan struct{}          { return t.done }

type mockClient struct {
	opts       *paho.ClientOptions
	connectErr error
	publishErr error
	topic      string
	qos        byte
	payload    []byte
	connected  bool
}

func (m *mockClient) IsConnected() bool { return m.connected }
func (m *mockClient) Connect() paho.Token {
	m.connected = m.connectErr == nil
	return newToken(m.connectErr)
}
func (m *mockClient) Disconnect(uint) { m.connected = false }
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.topic, m.qos = topic, qos
	m.payload, _ = payload.([]byte)
	return newToken(m.publishErr)
}

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestMQTTSenderPublishes(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	s, err := NewMQTTSender(MQTTConfig{Broker: "tcp://localhost:1883", QoS: 1, Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u", mc.opts.Username)

	require.NoError(t, s.Send(context.Background(), msg(jens)))
	assert.Equal(t, "greetings/jens@python.org", mc.topic)
	assert.Equal(t, byte(1), mc.qos)

	var g Greeting
	require.NoError(t, json.Unmarshal(mc.payload, &g))
	assert.Equal(t, "Jens", g.Name)
	assert.Equal(t, "jens@python.org", g.Email)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, msg(jens).At.UnixMilli(), g.Timestamp)

	require.NoError(t, s.Close())
	assert.False(t, mc.connected)
}

func TestMQTTSenderErrors(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("refused")}
	withMockClient(t, mc)
	_, err := NewMQTTSender(MQTTConfig{Broker: "tcp://localhost:1883"})
	assert.ErrorContains(t, err, "refused")

	mc.connectErr = nil
	mc.publishErr = errors.New("net fail")
	s, err := NewMQTTSender(MQTTConfig{Broker: "tcp://localhost:1883", TopicPrefix: "hello"})
	require.NoError(t, err)
	assert.ErrorContains(t, s.Send(context.Background(), msg(jens)), "hello/jens@python.org")
	assert.ErrorIs(t, s.Send(context.Background(), msg(model.Contact{Name: "x"})), corenotify.ErrMissingEmail)

	_, err = NewClientOptions(MQTTConfig{})
	assert.Error(t, err)
	_, err = NewClientOptions(MQTTConfig{Broker: "tcp://x:1883", UseTLS: true})
	assert.Error(t, err)
}

func TestRegisteredChannels(t *testing.T) {
	assert.Subset(t, corenotify.Channels(), []string{"console", "mqtt", "smtp"})

	s, err := corenotify.NewSender(factory.ModuleConfig{})
	require.NoError(t, err)
	assert.Equal(t, "console", s.Name())

	s, err = corenotify.NewSender(factory.ModuleConfig{Type: "smtp", Conf: map[string]any{"host": "relay", "port": "2525", "sender": "a@b.c"}})
	require.NoError(t, err)
	assert.Equal(t, "relay:2525", s.(*SMTPSender).Server())
}
