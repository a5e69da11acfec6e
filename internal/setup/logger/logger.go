package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const FormatJSON = "json"

// New builds the process logger. Output goes to stderr so stdio transports
// (the MCP server) keep stdout for protocol traffic.
func New(level string, format string) zerolog.Logger {
	return newLogger(os.Stderr, level, format)
}

func newLogger(out io.Writer, level string, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	writer := out
	if !strings.EqualFold(format, FormatJSON) {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Setup installs the logger as the global zerolog logger and returns it.
func Setup() zerolog.Logger {
	logger := New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	log.Logger = logger
	return logger
}
