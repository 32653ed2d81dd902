// Package observation reads reach-level SWOT observations from a RiverTile
// style file: one reach group holding time series aligned on the nt axis.
package observation

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/swot-confluence/offline/pkg/constants"
	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/flpe"
	"github.com/swot-confluence/offline/pkg/logging"
)

// Reach holds the time series of one reach. Missing observations are NaN.
type Reach struct {
	ReachID   int64       `json:"reach_id" yaml:"reach_id"`
	Height    flpe.Values `json:"height" yaml:"height"`
	Width     flpe.Values `json:"width" yaml:"width"`
	Slope     flpe.Values `json:"slope" yaml:"slope"`
	NT        int         `json:"nt" yaml:"nt"`
	TimeSteps flpe.Values `json:"time_steps" yaml:"time_steps"`
}

// PathFor returns the observation file of a reach inside dir.
func PathFor(dir string, reachID int64) string {
	return filepath.Join(dir, fmt.Sprintf("%d%s%s", reachID, constants.ObservationSuffix, constants.NetCDFExt))
}

// Read loads the reach observation stored at path.
func Read(ctx context.Context, store *dataset.Store, path string) (*Reach, error) {
	logger := logging.FromContext(ctx)

	ds, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	reach, err := ds.Group(constants.ReachGroup)
	if err != nil {
		return nil, err
	}

	ids, err := reach.Variable(constants.ReachIDField)
	if err != nil {
		return nil, err
	}
	idv := ids.Int64s()
	if len(idv) == 0 {
		return nil, errors.NewSchemaMismatchError(path, ids.Name, "no reach identifier")
	}
	// a RiverTile series repeats the id at every time step
	out := &Reach{ReachID: idv[0]}

	if out.Height, err = series(reach, constants.WSEField); err != nil {
		return nil, err
	}
	if out.Width, err = series(reach, constants.WidthField); err != nil {
		return nil, err
	}
	if out.Slope, err = series(reach, constants.SlopeField); err != nil {
		return nil, err
	}

	if ds.HasVariable(constants.TimeField) {
		steps, err := ds.Variable(constants.TimeField)
		if err != nil {
			return nil, err
		}
		out.TimeSteps = flpe.Values(steps.Float64s())
	}

	nt, ok := ds.Dimension(constants.TimeField)
	switch {
	case ok:
		out.NT = nt
	case out.TimeSteps != nil:
		out.NT = len(out.TimeSteps)
	default:
		return nil, errors.NewSchemaMismatchError(path, constants.TimeField, "time dimension not found")
	}

	logger.Debug().
		Str("path", path).
		Int64("reach_id", out.ReachID).
		Int("nt", out.NT).
		Msg("read reach observation")

	return out, nil
}

func series(g dataset.Group, name string) (flpe.Values, error) {
	v, err := g.Variable(name)
	if err != nil {
		return nil, err
	}
	return flpe.Values(v.Float64s()), nil
}
