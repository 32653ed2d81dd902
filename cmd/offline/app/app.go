// Package app provides the application context and dependency management
// for the offline CLI: configuration, logging and the lazily created
// assembly client.
package app

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/swot-confluence/offline"
	"github.com/swot-confluence/offline/internal/config"
	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/extract"
	"github.com/swot-confluence/offline/pkg/flpe"
)

// App represents the offline application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	loader *config.Loader
	config *config.Config
	logger *zerolog.Logger
	store  *dataset.Store
	stdout io.Writer

	// Shortcut flags for the log level
	verbose bool
	quiet   bool

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client offline.Client
}

// New creates a new App instance with the given version information.
// Configuration is read from the environment and config file; command-line
// flags are applied when a command runs.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		loader:  config.NewLoader(),
		stdout:  os.Stdout,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		cfg, err := app.loader.Load("")
		if err != nil {
			return nil, err
		}
		app.config = cfg
	}

	if app.logger == nil {
		logger := NewLogger(app.config, false, false)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Client returns the assembly client, creating it lazily from the current
// configuration. It is safe for concurrent use.
func (a *App) Client() (offline.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	if err := a.config.Require(config.KeyFLPEDir); err != nil {
		return nil, err
	}

	c, err := offline.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.NewConfigError("client", "failed to create client", err)
	}
	a.client = c
	return c, nil
}

// clientOptions translates the configuration into client options.
func (a *App) clientOptions() []offline.Option {
	cfg := a.config
	opts := []offline.Option{
		offline.WithFLPEDir(cfg.FLPEDir),
		offline.WithLayout(extract.Layout(cfg.Layout)),
		offline.WithRunType(flpe.RunType(cfg.RunType)),
		offline.WithConcurrency(cfg.Concurrency),
		offline.WithLogger(a.logger),
	}
	if cfg.SWORDPath != "" {
		opts = append(opts, offline.WithSWORD(cfg.SWORDPath))
	}
	if cfg.SWOTDir != "" {
		opts = append(opts, offline.WithSWOTDir(cfg.SWOTDir))
	}
	if a.store != nil {
		opts = append(opts, offline.WithStore(a.store))
	}
	return opts
}

// reset drops the client so the next call picks up a changed configuration.
func (a *App) reset() {
	a.mu.Lock()
	a.client = nil
	a.mu.Unlock()
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLoader sets the configuration loader used when commands run.
func WithLoader(l *config.Loader) Option {
	return func(a *App) error {
		a.loader = l
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStore sets the dataset store handed to the client (useful for testing).
func WithStore(store *dataset.Store) Option {
	return func(a *App) error {
		a.store = store
		return nil
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.stdout = w
		return nil
	}
}
