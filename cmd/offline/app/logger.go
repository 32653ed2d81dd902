package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/swot-confluence/offline/internal/config"
	"github.com/swot-confluence/offline/pkg/logging"
)

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag or OFFLINE_LOG_LEVEL
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. Default (info)
func NewLogger(cfg *config.Config, verbose, quiet bool) zerolog.Logger {
	level := determineLogLevel(cfg.LogLevel, verbose, quiet)

	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    cfg.LogOutput,
		NoColor:   os.Getenv("NO_COLOR") != "",
		AddCaller: level == "debug" || level == "trace",
	})
}

// determineLogLevel applies the precedence rules. An explicit level equal to
// the default does not hide the shortcut flags.
func determineLogLevel(explicit string, verbose, quiet bool) string {
	if explicit != "" && explicit != "info" {
		validated := validateLogLevel(explicit)
		if validated != explicit {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", explicit, validated)
		}
		return validated
	}

	if verbose && quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if verbose {
		return "debug"
	}
	if quiet {
		return "warn"
	}
	return "info"
}

// validateLogLevel returns level if it is known, otherwise "info".
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
