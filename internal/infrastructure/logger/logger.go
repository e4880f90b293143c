package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	globalLogger zerolog.Logger
	once         sync.Once
	mu           sync.RWMutex
)

// GetLogger returns the process logger. Until New is called it writes
// human-readable lines at info level.
func GetLogger() zerolog.Logger {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		globalLogger = build(consoleWriter(os.Stdout), zerolog.InfoLevel)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// New reconfigures the process logger from LOG_LEVEL and LOG_FORMAT.
func New(level, format string) (zerolog.Logger, error) {
	return NewWithWriter(level, format, os.Stdout)
}

func NewWithWriter(level, format string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
	}

	var w io.Writer
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		w = out
	case "console", "":
		w = consoleWriter(out)
	default:
		return zerolog.Logger{}, fmt.Errorf("unsupported log format %q", format)
	}

	GetLogger()
	zerolog.SetGlobalLevel(lvl)

	mu.Lock()
	globalLogger = build(w, lvl)
	mu.Unlock()
	return globalLogger, nil
}

func build(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("service", "promptforge").Logger().Level(lvl)
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
}
