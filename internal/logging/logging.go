// Package logging builds the one shared zerolog.Logger used across
// CodeContext's subsystems. There is no global logger singleton: New
// returns a logger that callers thread through via constructor
// parameters.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error). Empty
	// defaults to "info".
	Level string
	// Pretty switches to zerolog's human-readable console writer,
	// intended for an interactive terminal rather than piped/CI output.
	Pretty bool
	// Output overrides the destination writer. Defaults to os.Stderr.
	Output io.Writer
}

// New builds a logger from cfg, applying the LOG_LEVEL environment
// variable as the default when cfg.Level is empty.
func New(cfg Config) zerolog.Logger {
	level := cfg.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "silent":
		return zerolog.Disabled
	case "info", "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
