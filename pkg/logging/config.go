package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/swot-confluence/offline/pkg/constants"
)

// Config holds logger configuration options
type Config struct {
	// Level is the minimum log level to output
	Level string

	// Format is json, console, or auto (console on a terminal, JSON otherwise)
	Format string

	// Output is stderr, stdout, discard, or a file path appended to
	Output string

	// TimeFormat for console timestamps (kitchen, rfc3339, stamp, or a Go layout)
	TimeFormat string

	// NoColor disables color output in console mode
	NoColor bool

	// AddCaller includes file:line in log output
	AddCaller bool

	// Fields are attached to every event, e.g. a batch job identifier
	Fields map[string]any
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// NewLoggerFromConfig creates a new logger from configuration. Debug and
// trace levels always record the caller.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	zctx := zerolog.New(writerFor(cfg)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		zctx = zctx.Caller()
	}
	if len(cfg.Fields) > 0 {
		zctx = zctx.Fields(cfg.Fields)
	}
	return zctx.Logger()
}

// Configure replaces the default logger.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ConfigFromEnv reads OFFLINE_LOG_LEVEL, OFFLINE_LOG_FORMAT,
// OFFLINE_LOG_OUTPUT and OFFLINE_LOG_TIME_FORMAT over the defaults.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	for env, dst := range map[string]*string{
		"OFFLINE_LOG_LEVEL":       &cfg.Level,
		"OFFLINE_LOG_FORMAT":      &cfg.Format,
		"OFFLINE_LOG_OUTPUT":      &cfg.Output,
		"OFFLINE_LOG_TIME_FORMAT": &cfg.TimeFormat,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	return cfg
}

// writerFor opens the configured output and wraps it for console output.
// An unwritable log file falls back to stderr.
func writerFor(cfg *Config) io.Writer {
	var out io.Writer = os.Stderr
	switch o := strings.ToLower(cfg.Output); o {
	case "", "stderr":
	case "stdout":
		out = os.Stdout
	case "discard", "none":
		return io.Discard
	default:
		if f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions); err == nil {
			out = f
		}
	}

	console := false
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		console = true
	case "", "auto":
		console = out == os.Stderr && terminal(os.Stderr)
	}
	if !console {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeLayout(cfg.TimeFormat),
		NoColor:    cfg.NoColor,
	}
}

var levelAliases = map[string]zerolog.Level{
	"warning": zerolog.WarnLevel,
	"none":    zerolog.Disabled,
	"off":     zerolog.Disabled,
}

// parseLevel accepts zerolog level names and a few aliases; anything else
// is info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if l, ok := levelAliases[level]; ok {
		return l
	}
	if l, err := zerolog.ParseLevel(level); err == nil && level != "" {
		return l
	}
	return zerolog.InfoLevel
}

var timeLayouts = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"stamp":       time.Stamp,
}

// timeLayout resolves a named console time format. Strings that look like
// a Go layout are used as is.
func timeLayout(format string) string {
	if layout, ok := timeLayouts[strings.ToLower(format)]; ok {
		return layout
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}
