package offline

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/swot-confluence/offline/pkg/constants"
	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/extract"
	"github.com/swot-confluence/offline/pkg/flpe"
)

// options holds the client configuration.
type options struct {
	store *dataset.Store

	// inputs
	swordPath string
	swotDir   string
	flpeDir   string

	// extraction
	layout  extract.Layout
	runType flpe.RunType

	// batching
	concurrency int

	logger *zerolog.Logger
}

// Option is a function that configures a Client.
type Option func(*options) error

// defaults returns the default options: per-file layout, unconstrained run
// type and the OS filesystem.
func defaults() *options {
	return &options{
		layout:      extract.LayoutPerFile,
		runType:     flpe.Unconstrained,
		concurrency: constants.DefaultConcurrency,
	}
}

// apply applies the given options and validates the result.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.store == nil {
		o.store = dataset.NewStore()
	}
	if o.flpeDir == "" {
		return nil, errors.NewValidationError("flpe_dir", o.flpeDir, "FLPE output directory is required")
	}
	return o, nil
}

// WithStore sets the dataset store every input is read through.
func WithStore(store *dataset.Store) Option {
	return func(o *options) error {
		if store == nil {
			return errors.NewValidationError("store", nil, "store is nil")
		}
		o.store = store
		return nil
	}
}

// WithSWORD sets the reach database path. Without it assemblies carry no
// priors.
func WithSWORD(path string) Option {
	return func(o *options) error {
		o.swordPath = path
		return nil
	}
}

// WithSWOTDir sets the directory of {reach_id}_SWOT.nc observation files.
// Without it assemblies carry no observation.
func WithSWOTDir(dir string) Option {
	return func(o *options) error {
		o.swotDir = dir
		return nil
	}
}

// WithFLPEDir sets the directory holding FLPE algorithm outputs.
func WithFLPEDir(dir string) Option {
	return func(o *options) error {
		o.flpeDir = dir
		return nil
	}
}

// WithLayout sets the storage layout of FLPE outputs.
func WithLayout(layout extract.Layout) Option {
	return func(o *options) error {
		l, err := extract.ParseLayout(string(layout))
		if err != nil {
			return err
		}
		o.layout = l
		return nil
	}
}

// WithRunType sets the run type whose parameters are reported.
func WithRunType(rt flpe.RunType) Option {
	return func(o *options) error {
		parsed, err := flpe.ParseRunType(string(rt))
		if err != nil {
			return err
		}
		o.runType = parsed
		return nil
	}
}

// WithConcurrency sets how many reaches a batch assembles at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxConcurrency {
			return errors.NewValidationError("concurrency", n, fmt.Sprintf("must be between 1 and %d", constants.MaxConcurrency))
		}
		o.concurrency = n
		return nil
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
