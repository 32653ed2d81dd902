package observation_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/flpe"
	"github.com/swot-confluence/offline/pkg/observation"
)

const reachID = 74265000011

func swotFile(withDim bool) *dataset.Node {
	root := dataset.NewNode()
	root.Set("nt", nil, 0, 86400, 172800)
	if withDim {
		root.SetDim("nt", 3)
	}
	root.Sub("reach").
		SetInts("reach_id", nil, reachID, reachID, reachID).
		Set("wse", nil, 10.5, math.NaN(), 11).
		Set("width", nil, 80, 82, math.NaN()).
		Set("slope2", nil, 1e-4, 2e-4, 3e-4)
	return root
}

func TestRead(t *testing.T) {
	mem := dataset.NewMemory()
	path := observation.PathFor("/swot", reachID)
	require.NoError(t, mem.Add(path, swotFile(true)))

	obs, err := observation.Read(context.Background(), mem.Store(), path)
	require.NoError(t, err)

	assert.Equal(t, int64(reachID), obs.ReachID)
	assert.Equal(t, 3, obs.NT)
	assert.Equal(t, flpe.Values{0, 86400, 172800}, obs.TimeSteps)
	assert.Len(t, obs.Height, 3)
	assert.True(t, math.IsNaN(obs.Height[1]))
	assert.True(t, math.IsNaN(obs.Width[2]))
	assert.Equal(t, 3e-4, obs.Slope[2])

	data, err := json.Marshal(obs)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"height":[10.5,null,11]`)
	assert.Zero(t, mem.Outstanding())
}

func TestReadFallsBackToTimeVariable(t *testing.T) {
	mem := dataset.NewMemory()
	require.NoError(t, mem.Add("/swot/obs.nc", swotFile(false)))

	obs, err := observation.Read(context.Background(), mem.Store(), "/swot/obs.nc")
	require.NoError(t, err)
	assert.Equal(t, 3, obs.NT)
}

func TestReadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		mem := dataset.NewMemory()
		_, err := observation.Read(context.Background(), mem.Store(), "/swot/none.nc")
		assert.True(t, errors.IsSourceNotFound(err))
	})

	t.Run("missing group", func(t *testing.T) {
		mem := dataset.NewMemory()
		require.NoError(t, mem.Add("/swot/obs.nc", dataset.NewNode().SetDim("nt", 0)))
		_, err := observation.Read(context.Background(), mem.Store(), "/swot/obs.nc")
		assert.True(t, errors.IsSchemaMismatch(err))
		assert.Zero(t, mem.Outstanding())
	})

	t.Run("missing field", func(t *testing.T) {
		root := dataset.NewNode().SetDim("nt", 1)
		root.Sub("reach").SetInts("reach_id", nil, reachID).Set("wse", nil, 1)
		mem := dataset.NewMemory()
		require.NoError(t, mem.Add("/swot/obs.nc", root))

		_, err := observation.Read(context.Background(), mem.Store(), "/swot/obs.nc")
		require.Error(t, err)
		assert.True(t, errors.IsSchemaMismatch(err))
		assert.Contains(t, err.Error(), "reach/width")
		assert.Zero(t, mem.Outstanding())
	})

	t.Run("no time axis", func(t *testing.T) {
		root := dataset.NewNode()
		root.Sub("reach").
			SetInts("reach_id", nil, reachID).
			Set("wse", nil, 1).Set("width", nil, 1).Set("slope2", nil, 1)
		mem := dataset.NewMemory()
		require.NoError(t, mem.Add("/swot/obs.nc", root))

		_, err := observation.Read(context.Background(), mem.Store(), "/swot/obs.nc")
		assert.True(t, errors.IsSchemaMismatch(err))
	})
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/data/swot/74265000011_SWOT.nc", observation.PathFor("/data/swot", reachID))
}
