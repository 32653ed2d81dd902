package offline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/extract"
	"github.com/swot-confluence/offline/pkg/logging"
)

// Batcher assembles many reaches.
type Batcher interface {
	// AssembleBatch assembles every reach, at most the configured number at
	// once. A failed reach is reported in its result and does not stop the
	// others. The returned error is only set when the batch could not start.
	AssembleBatch(ctx context.Context, reachIDs []int64) ([]BatchResult, error)
}

// BatchResult is the outcome of one reach in a batch.
type BatchResult struct {
	ReachID  int64     `json:"reach_id" yaml:"reach_id"`
	Assembly *Assembly `json:"assembly,omitempty" yaml:"assembly,omitempty"`
	Err      error     `json:"-" yaml:"-"`
}

// BatchSummary counts batch outcomes.
type BatchSummary struct {
	Total       int `json:"total" yaml:"total"`
	Available   int `json:"available" yaml:"available"`
	Unavailable int `json:"unavailable" yaml:"unavailable"`
	Failed      int `json:"failed" yaml:"failed"`
}

// Summarize counts the outcomes of results.
func Summarize(results []BatchResult) BatchSummary {
	s := BatchSummary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Assembly.Available():
			s.Available++
		default:
			s.Unavailable++
		}
	}
	return s
}

// String implements fmt.Stringer.
func (s BatchSummary) String() string {
	return fmt.Sprintf("%d reaches: %d available, %d unavailable, %d failed",
		s.Total, s.Available, s.Unavailable, s.Failed)
}

// AssembleBatch implements Batcher. Results are in reachIDs order.
func (c *client) AssembleBatch(ctx context.Context, reachIDs []int64) ([]BatchResult, error) {
	ctx = logging.WithOperation(c.context(ctx), "batch")
	logger := logging.FromContext(ctx)

	// scan the MetroMan directory once before fanning out
	if c.options.layout == extract.LayoutPerFile {
		if _, err := c.Manifest(ctx); err != nil {
			return nil, err
		}
	}

	results := make([]BatchResult, len(reachIDs))

	var g errgroup.Group
	g.SetLimit(c.options.concurrency)
	for i, id := range reachIDs {
		results[i].ReachID = id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Assembly, results[i].Err = c.Assemble(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	summary := Summarize(results)
	logger.Info().
		Int("total", summary.Total).
		Int("available", summary.Available).
		Int("unavailable", summary.Unavailable).
		Int("failed", summary.Failed).
		Msg("batch assembled")

	return results, nil
}

func errNoManifest(layout extract.Layout) error {
	return errors.NewValidationError("layout", layout, "MetroMan manifest only exists for the perfile layout")
}
