// Package offline assembles, for each SWOT river reach, the record consumed
// by discharge integration: the reach observations, its priors from the
// SWORD reach database, and the reconciled parameters of the six FLPE
// algorithms.
//
// Example usage:
//
//	c, err := offline.New(
//	    offline.WithSWORD("/mnt/input/sword/na_sword_v16.nc"),
//	    offline.WithSWOTDir("/mnt/input/swot"),
//	    offline.WithFLPEDir("/mnt/flpe"),
//	    offline.WithRunType(flpe.Constrained),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// One reach
//	a, err := c.Assemble(ctx, 74265000011)
//
//	// Many reaches; failures are reported per reach
//	results, err := c.AssembleBatch(ctx, reachIDs)
package offline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/swot-confluence/offline/pkg/extract"
	"github.com/swot-confluence/offline/pkg/flpe"
	"github.com/swot-confluence/offline/pkg/logging"
	"github.com/swot-confluence/offline/pkg/observation"
	"github.com/swot-confluence/offline/pkg/prior"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Assembler assembles single reaches.
type Assembler interface {
	// Assemble reads every input of one reach
	Assemble(ctx context.Context, reachID int64) (*Assembly, error)

	// Record extracts only the reconciled FLPE record of one reach
	Record(ctx context.Context, reachID int64) (*flpe.Record, error)
}

// Client assembles reach records from a fixed set of inputs.
type Client interface {
	Assembler

	// Batcher assembles many reaches in parallel
	Batcher

	// Hooks provides access to event callback registration
	Hooks

	// Manifest returns the MetroMan manifest of a per-file layout
	Manifest(ctx context.Context) (*extract.Manifest, error)

	// RunType and Layout report the extraction settings
	RunType() flpe.RunType
	Layout() extract.Layout
}

// Assembly is everything assembled for one reach. Observation and Priors are
// nil when the client has no SWOT directory or reach database configured.
type Assembly struct {
	ReachID     int64              `json:"reach_id" yaml:"reach_id"`
	Observation *observation.Reach `json:"observation,omitempty" yaml:"observation,omitempty"`
	Priors      *prior.Priors      `json:"priors,omitempty" yaml:"priors,omitempty"`
	Record      *flpe.Record       `json:"flpe" yaml:"flpe"`
}

// Available reports whether the reach had complete FLPE outputs.
func (a *Assembly) Available() bool {
	return a != nil && a.Record != nil && a.Record.Availability == flpe.Available
}

// client is the internal implementation of the Client interface.
type client struct {
	options   *options
	extractor extract.Extractor
	hooks     *hooks
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	x, err := extract.New(o.layout, o.flpeDir, extract.WithStore(o.store))
	if err != nil {
		return nil, err
	}

	return &client{
		options:   o,
		extractor: x,
		hooks:     newHooks(),
	}, nil
}

func (c *client) RunType() flpe.RunType {
	return c.options.runType
}

func (c *client) Layout() extract.Layout {
	return c.options.layout
}

func (c *client) OnAssembled(fn AssembledHook)     { c.hooks.OnAssembled(fn) }
func (c *client) OnUnavailable(fn UnavailableHook) { c.hooks.OnUnavailable(fn) }
func (c *client) OnFailed(fn FailedHook)           { c.hooks.OnFailed(fn) }

// Manifest returns the MetroMan manifest. It is only defined for the
// per-file layout.
func (c *client) Manifest(ctx context.Context) (*extract.Manifest, error) {
	pf, ok := c.extractor.(*extract.PerFile)
	if !ok {
		return nil, errNoManifest(c.options.layout)
	}
	return pf.Manifest(c.context(ctx))
}

// context attaches the configured logger unless ctx already carries one.
func (c *client) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.options.logger != nil && logging.FromContext(ctx) == logging.Default() {
		ctx = logging.WithLogger(ctx, c.options.logger)
	}
	return ctx
}

// Record implements Assembler.
func (c *client) Record(ctx context.Context, reachID int64) (*flpe.Record, error) {
	return c.extractor.Extract(c.context(ctx), reachID, c.options.runType)
}

// Assemble implements Assembler. The observation, priors and FLPE record
// are independent and read concurrently.
func (c *client) Assemble(ctx context.Context, reachID int64) (*Assembly, error) {
	ctx = logging.WithReach(c.context(ctx), reachID)

	a := &Assembly{ReachID: reachID}

	var g errgroup.Group
	if c.options.swotDir != "" {
		g.Go(func() (err error) {
			a.Observation, err = observation.Read(ctx, c.options.store, observation.PathFor(c.options.swotDir, reachID))
			return err
		})
	}
	if c.options.swordPath != "" {
		g.Go(func() (err error) {
			a.Priors, err = prior.Read(ctx, c.options.store, c.options.swordPath, reachID)
			return err
		})
	}
	g.Go(func() (err error) {
		a.Record, err = c.extractor.Extract(ctx, reachID, c.options.runType)
		return err
	})

	if err := g.Wait(); err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("reach assembly failed")
		c.hooks.trigger(reachID, nil, err)
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Str("availability", string(a.Record.Availability)).
		Msg("reach assembled")
	c.hooks.trigger(reachID, a, nil)
	return a, nil
}
