package delivery

import (
	"fmt"
	"path/filepath"

	"github.com/kilianp07/greetd/core/logger"
)

// Config defines settings for delivery log storage and rotation.
type Config struct {
	// Backend selects the store type: "text", "jsonl", "rotating" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// LockPath is the advisory lock file guarding check-then-append.
	// "-" disables locking.
	LockPath string `json:"lock_path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "text"
	}
	if c.Path == "" {
		c.Path = "log.txt"
	}
	if c.LockPath == "" {
		c.LockPath = filepath.Join(filepath.Dir(c.Path), "."+filepath.Base(c.Path)+".lock")
	}
	if c.Backend == "rotating" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "text", "jsonl", "rotating", "sqlite", "memory":
	default:
		return fmt.Errorf("delivery: unknown backend %s", c.Backend)
	}
	if c.Path == "" && c.Backend != "memory" {
		return fmt.Errorf("delivery: path is required")
	}
	return nil
}

// Open builds the store and locker described by cfg.
func Open(cfg Config, log logger.Logger) (Store, Locker, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case "text":
		store, err = NewTextStore(cfg.Path, log)
	case "jsonl":
		store, err = NewJSONLStore(cfg.Path, log)
	case "rotating":
		store, err = NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays, log)
	case "sqlite":
		store, err = NewSQLiteStore(cfg.Path)
	case "memory":
		store = NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("delivery: unknown backend %s", cfg.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s delivery log: %w", cfg.Backend, err)
	}
	if cfg.LockPath == "" || cfg.LockPath == "-" || cfg.Backend == "memory" {
		return store, NopLocker{}, nil
	}
	lock, err := NewFileLock(cfg.LockPath)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("delivery lock: %w", err)
	}
	return store, lock, nil
}
