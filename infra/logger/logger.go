package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/greetd/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

var (
	mu     sync.RWMutex
	output io.Writer = os.Stderr
	level            = zerolog.InfoLevel
)

// Configure sets the output and minimum level for loggers created afterwards.
// Logs go to stderr by default so they never interleave with interactive output.
// Unknown levels fall back to info.
func Configure(w io.Writer, lvl string) {
	mu.Lock()
	defer mu.Unlock()
	if w != nil {
		output = w
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(lvl)))
	if err != nil || lvl == "" {
		parsed = zerolog.InfoLevel
	}
	level = parsed
}

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable.
func New(component string) Logger {
	mu.RLock()
	w, lvl := output, level
	mu.RUnlock()
	return NewZerologLogger(component, w, lvl)
}
