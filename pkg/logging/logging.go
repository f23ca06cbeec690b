package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is a slog level. The harness only distinguishes the four below.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config describes a harness logger. The zero value logs at info level, as
// text, to stderr.
type Config struct {
	Level  Level
	Format Format    // anything but FormatJSON means text
	Output io.Writer // nil means os.Stderr
}

// New returns a logger for cfg.
func New(cfg Config) *slog.Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Nop returns the logger components fall back to when none is given.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel reads a --log-level flag value. Unknown values give LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// ParseFormat reads a --log-format flag value. Only "json" (any case)
// selects FormatJSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// HoverflyLevel maps level onto Hoverfly's -log-level values so a launched
// instance is as verbose as the harness driving it.
func HoverflyLevel(level Level) string {
	switch {
	case level <= LevelDebug:
		return "debug"
	case level <= LevelInfo:
		return "info"
	case level <= LevelWarn:
		return "warn"
	}
	return "error"
}
