package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultLevel = zerolog.InfoLevel

// Config holds logger configuration
type Config struct {
	Level  string    // Any zerolog level name, case-insensitive; empty means info
	Pretty bool      // Human readable console output instead of JSON
	Output io.Writer // Defaults to stdout
}

// New builds the process logger and sets the global level to match it.
// An unrecognized level falls back to info and is reported through the returned logger.
func New(cfg Config) zerolog.Logger {
	level, levelErr := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	l := zerolog.New(writer(cfg)).
		With().
		Timestamp().
		Str("app", "portfoy").
		Logger()

	if levelErr != nil {
		l.Warn().Err(levelErr).Stringer("using", level).Msg("Ignoring log level")
	}
	return l
}

// ParseLevel maps a configured level name to a zerolog level
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return defaultLevel, nil
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return defaultLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

func writer(cfg Config) io.Writer {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if !cfg.Pretty {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
}

// Component derives a logger tagged with the subsystem that writes to it
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// SetGlobalLogger sets the package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
