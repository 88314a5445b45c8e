package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/journald"

	"github.com/auto-dns/ddns-sync/internal/config"
)

const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatJournald = "journald"
)

func SetupLogger(cfg *config.LoggingConfig) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg *config.LoggingConfig, out io.Writer) zerolog.Logger {
	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer
	switch strings.ToLower(cfg.Format) {
	case FormatJSON:
		w = out
	case FormatJournald:
		w = journald.NewJournalDWriter()
	default:
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Str("service", "ddns_sync").
		Str("host", hostname).
		Logger()
}

// ParseLevel maps a configured level to zerolog. "off" disables logging and
// anything unrecognised falls back to info.
func ParseLevel(s string) zerolog.Level {
	levelStr := strings.ToLower(strings.TrimSpace(s))
	if levelStr == "off" {
		return zerolog.Disabled
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		return zerolog.InfoLevel
	}
	return level
}
