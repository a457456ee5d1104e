package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// validateLogLevel accepts the zerolog level names.
func validateLogLevel(lvl string) error {
	if _, err := zerolog.ParseLevel(lvl); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}
