// Package extract reads FLPE algorithm outputs for a reach and reconciles
// them into a flpe.Record.
//
// Two storage layouts are supported. In the per-file layout every algorithm
// writes its own file under a per-algorithm directory; a reach whose outputs
// are incomplete is reported as having no data at all. In the integrator
// layout a single file per reach holds one group per algorithm and its
// absence is an error.
package extract

import (
	"context"
	"strings"

	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/flpe"
)

// Layout is the storage layout of FLPE outputs.
type Layout string

// Layouts.
const (
	LayoutPerFile    Layout = "perfile"
	LayoutIntegrator Layout = "integrator"
)

// ParseLayout parses a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case LayoutPerFile:
		return LayoutPerFile, nil
	case LayoutIntegrator:
		return LayoutIntegrator, nil
	default:
		return "", errors.NewValidationError("layout", s, "must be perfile or integrator")
	}
}

// String implements fmt.Stringer.
func (l Layout) String() string {
	return string(l)
}

// Extractor builds the reconciled FLPE record of a reach.
type Extractor interface {
	Layout() Layout
	Extract(ctx context.Context, reachID int64, runType flpe.RunType) (*flpe.Record, error)
}

// Option configures an extractor.
type Option func(*options) error

type options struct {
	store    *dataset.Store
	manifest *Manifest
}

// WithStore sets the dataset store files are read through.
func WithStore(store *dataset.Store) Option {
	return func(o *options) error {
		if store == nil {
			return errors.NewValidationError("store", nil, "store is nil")
		}
		o.store = store
		return nil
	}
}

// WithManifest supplies a prebuilt MetroMan manifest to a per-file
// extractor. Without one the extractor scans the MetroMan directory on
// first use.
func WithManifest(m *Manifest) Option {
	return func(o *options) error {
		o.manifest = m
		return nil
	}
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.store == nil {
		o.store = dataset.NewStore()
	}
	return o, nil
}

// New returns the extractor for layout reading from dir.
func New(layout Layout, dir string, opts ...Option) (Extractor, error) {
	switch layout {
	case LayoutPerFile:
		return NewPerFile(dir, opts...)
	case LayoutIntegrator:
		return NewIntegrator(dir, opts...)
	default:
		return nil, errors.NewValidationError("layout", layout, "must be perfile or integrator")
	}
}

func checkRunType(rt flpe.RunType) error {
	if !rt.Valid() {
		return errors.NewValidationError("run_type", rt, "must be constrained or unconstrained")
	}
	return nil
}
