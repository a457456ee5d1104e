// Package config loads greetd settings from a YAML or JSON file with
// GREETD_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/greetd/core/delivery"
	"github.com/kilianp07/greetd/core/dispatch"
	"github.com/kilianp07/greetd/core/factory"
	"github.com/kilianp07/greetd/core/metrics"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore, e.g. GREETD_DELIVERY__BACKEND=sqlite.
const EnvPrefix = "GREETD_"

type Config struct {
	// SeedDemo adds the demo contacts when Contacts is empty.
	SeedDemo *bool                `json:"seed_demo" default:"true"`
	Contacts []ContactConfig      `json:"contacts"`
	Delivery delivery.Config      `json:"delivery"`
	Dispatch dispatch.Config      `json:"dispatch"`
	Channel  factory.ModuleConfig `json:"channel"`
	Metrics  metrics.Config       `json:"metrics"`
	Sentry   SentryConfig         `json:"sentry"`
	API      APIConfig            `json:"api"`
	LogLevel string               `json:"log_level" default:"info"`
}

// Load reads path and applies environment overrides. A missing file yields
// the defaults; an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.complete(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	if err := cfg.complete(); err != nil {
		panic(err)
	}
	return &cfg
}

func (c *Config) complete() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	c.Delivery.SetDefaults()
	c.Dispatch.SetDefaults()
	if c.Channel.Type == "" {
		c.Channel.Type = "console"
	}
	return c.Validate()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Delivery.Validate(); err != nil {
		return err
	}
	if err := c.Dispatch.Validate(); err != nil {
		return err
	}
	if err := validateLogLevel(c.LogLevel); err != nil {
		return err
	}
	for i, cc := range c.Contacts {
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("contacts[%d]: %w", i, err)
		}
	}
	return nil
}

// ContactList returns the configured contacts, or the demo contacts when none
// are configured and seeding is enabled.
func (c *Config) ContactList() []ContactConfig {
	if len(c.Contacts) == 0 && (c.SeedDemo == nil || *c.SeedDemo) {
		return append([]ContactConfig(nil), DemoContacts...)
	}
	return c.Contacts
}
