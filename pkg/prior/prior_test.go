package prior_test

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
	"github.com/swot-confluence/offline/pkg/prior"
)

const swordPath = "/sword/na_sword_v16.nc"

// sword builds a three-reach database. Per-reach values are offset by the
// reach index so the selected column is recognisable.
func sword(withSIC bool) *dataset.Node {
	root := dataset.NewNode()
	reaches := root.Sub("reaches")
	reaches.SetInts("reach_id", nil, 11, 22, 33)

	fits := reaches.Sub("area_fits")
	for i, name := range []string{"h_variance", "w_variance", "hw_covariance",
		"med_flow_area", "h_err_stdev", "w_err_stdev", "h_w_nobs"} {
		base := float64(i * 10)
		fits.Set(name, nil, base, base+1, base+2)
	}
	// [2, 3, 3]: element (i, j, r) = 100*i + 10*j + r
	coeffs := make([]float64, 0, 18)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			for r := 0; r < 3; r++ {
				coeffs = append(coeffs, float64(100*i+10*j+r))
			}
		}
	}
	fits.Set("fit_coeffs", []int{2, 3, 3}, coeffs...)
	fits.Set("h_break", []int{4, 3}, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	fits.Set("w_break", []int{4, 3}, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24)

	models := reaches.Sub("discharge_models")
	for k, rt := range flpe.RunTypes() {
		branch := models.Sub(rt.String())
		for _, a := range flpe.Algorithms() {
			if a == flpe.AlgSIC4DVar && !withSIC {
				continue
			}
			g := branch.Sub(string(a))
			for _, key := range prior.ModelKeys(a) {
				off := float64(k * 1000)
				g.Set(key, nil, off+1, off+2, off+3)
			}
		}
	}
	return root
}

func newStore(t *testing.T, root *dataset.Node) (*dataset.Memory, *dataset.Store) {
	t.Helper()
	mem := dataset.NewMemory()
	require.NoError(t, mem.Add(swordPath, root))
	return mem, mem.Store()
}

func TestRead(t *testing.T) {
	mem, store := newStore(t, sword(true))

	p, err := prior.Read(context.Background(), store, swordPath, 22)
	require.NoError(t, err)
	assert.Zero(t, mem.Outstanding())

	assert.Equal(t, 1, p.Index)
	fit := p.AreaFit
	assert.Equal(t, flpe.Float(1.0), fit.HVariance)
	assert.Equal(t, flpe.Float(11.0), fit.WVariance)
	assert.Equal(t, flpe.Float(61.0), fit.HWNobs)
	assert.Equal(t, [2][3]flpe.Float{{1, 11, 21}, {101, 111, 121}}, fit.FitCoeffs)
	assert.Equal(t, [4]flpe.Float{2, 5, 8, 11}, fit.HBreak)
	assert.Equal(t, [4]flpe.Float{14, 17, 20, 23}, fit.WBreak)

	t.Run("branches come from the database", func(t *testing.T) {
		un := p.DischargeModels.Branch(flpe.Unconstrained)
		co := p.DischargeModels.Branch(flpe.Constrained)
		assert.Equal(t, flpe.Float(2.0), un.MetroMan["ninf_Abar_cor"])
		assert.Equal(t, flpe.Float(1002.0), co.MetroMan["ninf_Abar_cor"])
		assert.Len(t, un.MetroMan, 9)
		assert.Equal(t, flpe.Float(2.0), un.Get(flpe.AlgMOMMA)["Save"])
		assert.Equal(t, flpe.Float(1002.0), co.Get(flpe.AlgSIC4DVar)["n"])
	})
}

func TestReadWithoutSIC4DVar(t *testing.T) {
	_, store := newStore(t, sword(false))

	p, err := prior.Read(context.Background(), store, swordPath, 33)
	require.NoError(t, err)
	assert.Nil(t, p.DischargeModels.Unconstrained.SIC4DVar)
	assert.Equal(t, flpe.Float(3.0), p.DischargeModels.Unconstrained.BAM["n"])
}

func TestReadReachNotFound(t *testing.T) {
	mem, store := newStore(t, sword(true))

	p, err := prior.Read(context.Background(), store, swordPath, 44)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.True(t, errors.IsReachNotFound(err))
	assert.Zero(t, mem.Outstanding())
}

func TestReadSchemaErrors(t *testing.T) {
	t.Run("duplicate reach id", func(t *testing.T) {
		root := sword(true)
		root.Sub("reaches").SetInts("reach_id", nil, 11, 22, 22)
		_, store := newStore(t, root)

		_, err := prior.Read(context.Background(), store, swordPath, 22)
		assert.True(t, errors.IsSchemaMismatch(err))
	})

	t.Run("fit coefficients of the wrong shape", func(t *testing.T) {
		root := sword(true)
		root.Sub("reaches").Sub("area_fits").Set("fit_coeffs", []int{3, 3, 2}, make([]float64, 18)...)
		_, store := newStore(t, root)

		_, err := prior.Read(context.Background(), store, swordPath, 11)
		require.Error(t, err)
		assert.True(t, errors.IsSchemaMismatch(err))
		assert.Contains(t, err.Error(), "fit_coeffs")
	})

	t.Run("break points of the wrong shape", func(t *testing.T) {
		root := sword(true)
		root.Sub("reaches").Sub("area_fits").Set("h_break", []int{3, 3}, make([]float64, 9)...)
		_, store := newStore(t, root)

		_, err := prior.Read(context.Background(), store, swordPath, 11)
		assert.True(t, errors.IsSchemaMismatch(err))
	})

	t.Run("missing algorithm group", func(t *testing.T) {
		root := dataset.NewNode()
		reaches := root.Sub("reaches")
		reaches.SetInts("reach_id", nil, 11)
		_, store := newStore(t, root)

		_, err := prior.Read(context.Background(), store, swordPath, 11)
		assert.True(t, errors.IsSchemaMismatch(err))
	})

	t.Run("missing database", func(t *testing.T) {
		store := dataset.NewMemory().Store()
		_, err := prior.Read(context.Background(), store, swordPath, 11)
		assert.True(t, errors.IsSourceNotFound(err))
	})
}

func TestPriorsJSON(t *testing.T) {
	root := sword(true)
	root.Sub("reaches").Sub("area_fits").Set("h_variance", nil, 0, math.NaN(), 2)
	_, store := newStore(t, root)

	p, err := prior.Read(context.Background(), store, swordPath, 22)
	require.NoError(t, err)
	assert.True(t, p.AreaFit.HVariance.IsNaN())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"h_variance":null`)
	assert.Contains(t, string(data), `"fit_coeffs":[[1,11,21],[101,111,121]]`)
}
