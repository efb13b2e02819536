package config

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLogLevel maps a level name to a log.Level, defaulting to warn.
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// ParseLogFormatter maps a formatter name to a log.Formatter.
func ParseLogFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// NewLogger builds the process logger. Warnings about storage and imports
// go here; command output does not.
func (c Config) NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:     ParseLogLevel(c.LogLevel),
		Formatter: ParseLogFormatter(c.LogFormat),
		Prefix:    "mapcheck",
	})
}
