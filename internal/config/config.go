// Package config loads runtime configuration for the offline CLI from
// command-line flags, OFFLINE_* environment variables, .env files and an
// optional YAML config file, in that order of precedence.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/swot-confluence/offline/pkg/constants"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/extract"
	"github.com/swot-confluence/offline/pkg/flpe"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "OFFLINE"

// Configuration keys.
const (
	KeySWORDPath   = "sword_path"
	KeySWOTDir     = "swot_dir"
	KeyFLPEDir     = "flpe_dir"
	KeyLayout      = "layout"
	KeyRunType     = "run_type"
	KeyConcurrency = "concurrency"
	KeyOutput      = "output"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
	KeyLogOutput   = "log_output"
)

// Keys returns every configuration key.
func Keys() []string {
	return []string{KeySWORDPath, KeySWOTDir, KeyFLPEDir, KeyLayout, KeyRunType,
		KeyConcurrency, KeyOutput, KeyLogLevel, KeyLogFormat, KeyLogOutput}
}

// DefaultEnvFiles are loaded from the working directory. Values in
// .env.local win over .env; real environment variables win over both.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config holds the resolved configuration.
type Config struct {
	SWORDPath   string `mapstructure:"sword_path" yaml:"sword_path"`
	SWOTDir     string `mapstructure:"swot_dir" yaml:"swot_dir"`
	FLPEDir     string `mapstructure:"flpe_dir" yaml:"flpe_dir"`
	Layout      string `mapstructure:"layout" yaml:"layout"`
	RunType     string `mapstructure:"run_type" yaml:"run_type"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
	Output      string `mapstructure:"output" yaml:"output"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	LogOutput string `mapstructure:"log_output" yaml:"log_output"`

	// ConfigFile is the config file that was read, if any.
	ConfigFile string `mapstructure:"-" yaml:"-"`
}

// Loader resolves a Config from its sources. Each Loader owns its viper
// instance so tests and concurrent commands do not share global state.
type Loader struct {
	v        *viper.Viper
	envFiles []string
}

// NewLoader creates a loader with defaults for every key.
func NewLoader(envFiles ...string) *Loader {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about; env-only keys must be bound.
	for _, key := range Keys() {
		_ = v.BindEnv(key)
	}

	v.SetDefault(KeyLayout, string(extract.LayoutPerFile))
	v.SetDefault(KeyRunType, string(flpe.Unconstrained))
	v.SetDefault(KeyConcurrency, constants.DefaultConcurrency)
	v.SetDefault(KeyOutput, "auto")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "auto")
	v.SetDefault(KeyLogOutput, "stderr")

	return &Loader{v: v, envFiles: envFiles}
}

// Viper returns the underlying viper instance.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// BindFlag makes a command-line flag the highest-precedence source of key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return errors.NewConfigError("flags", fmt.Sprintf("no flag bound to %s", key), nil)
	}
	if err := l.v.BindPFlag(key, flag); err != nil {
		return errors.NewConfigError("flags", "failed to bind "+key, err)
	}
	return nil
}

// Load resolves the configuration. An explicit configFile must exist;
// otherwise .offline.yaml is searched in the home and working directories.
func (l *Loader) Load(configFile string) (*Config, error) {
	l.loadEnvFiles()

	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(home)
		}
		l.v.AddConfigPath(".")
		l.v.SetConfigType("yaml")
		l.v.SetConfigName(".offline")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("viper", "failed to read config file", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("viper", "failed to decode config", err)
	}
	cfg.ConfigFile = l.v.ConfigFileUsed()

	return cfg, nil
}

// loadEnvFiles loads .env files without overriding variables already set.
func (l *Loader) loadEnvFiles() {
	for _, envFile := range l.envFiles {
		_ = godotenv.Load(envFile)
	}
}

// Validate checks that enumerated values parse and numbers are in range.
func (c *Config) Validate() error {
	if _, err := extract.ParseLayout(c.Layout); err != nil {
		return err
	}
	if _, err := flpe.ParseRunType(c.RunType); err != nil {
		return err
	}
	if c.Concurrency < 1 || c.Concurrency > constants.MaxConcurrency {
		return errors.NewValidationError(KeyConcurrency, c.Concurrency,
			fmt.Sprintf("must be between 1 and %d", constants.MaxConcurrency))
	}
	return nil
}

// Require checks that the named path settings are set.
func (c *Config) Require(keys ...string) error {
	values := map[string]string{
		KeySWORDPath: c.SWORDPath,
		KeySWOTDir:   c.SWOTDir,
		KeyFLPEDir:   c.FLPEDir,
	}
	for _, key := range keys {
		if values[key] == "" {
			return errors.NewValidationError(key, nil,
				fmt.Sprintf("required; set --%s or %s_%s", strings.ReplaceAll(key, "_", "-"), EnvPrefix, strings.ToUpper(key)))
		}
	}
	return nil
}
