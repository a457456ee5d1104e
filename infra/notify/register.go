package notify

import (
	"os"

	"github.com/kilianp07/greetd/core/factory"
	corenotify "github.com/kilianp07/greetd/core/notify"
)

// init registers built-in greeting channels.
func init() {
	_ = corenotify.RegisterSender("console", func(map[string]any) (corenotify.Sender, error) {
		return NewConsoleSender(os.Stdout), nil
	})

	_ = corenotify.RegisterSender("smtp", func(conf map[string]any) (corenotify.Sender, error) {
		var c SMTPConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSMTPSender(c)
	})

	_ = corenotify.RegisterSender("mqtt", func(conf map[string]any) (corenotify.Sender, error) {
		var c MQTTConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMQTTSender(c)
	})
}
