package dispatch

import (
	"fmt"
	"time"

	"github.com/kilianp07/greetd/core/delivery"
	"github.com/kilianp07/greetd/core/window"
)

// Config defines dispatch-related settings.
type Config struct {
	// WindowMinutes is the half-width of the windowed-mode dispatch window.
	WindowMinutes int `json:"window_minutes" default:"15"`
	// RecentDays is the number of calendar days printed by the log view.
	RecentDays int `json:"recent_days" default:"2"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.WindowMinutes == 0 {
		c.WindowMinutes = int(window.Width / time.Minute)
	}
	if c.RecentDays == 0 {
		c.RecentDays = delivery.DefaultRecentDays
	}
}

// Validate rejects negative values and windows of a day or more.
func (c Config) Validate() error {
	if c.WindowMinutes < 0 || c.WindowMinutes >= 24*60 {
		return fmt.Errorf("dispatch.window_minutes must be between 0 and 1439, got %d", c.WindowMinutes)
	}
	if c.RecentDays < 0 {
		return fmt.Errorf("dispatch.recent_days must not be negative, got %d", c.RecentDays)
	}
	return nil
}

// Window returns the configured half-width.
func (c Config) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}
