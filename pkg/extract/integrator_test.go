package extract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/extract"
	"github.com/swot-confluence/offline/pkg/flpe"
)

const integratorPath = "/flpe/74265000011_integrator.nc"

func newIntegrator(t *testing.T, root *dataset.Node) (*dataset.Memory, *extract.Integrator) {
	t.Helper()
	mem := dataset.NewMemory()
	if root != nil {
		require.NoError(t, mem.Add(integratorPath, root))
	}
	x, err := extract.NewIntegrator(flpeDir, extract.WithStore(mem.Store()))
	require.NoError(t, err)
	return mem, x
}

func TestIntegratorExtract(t *testing.T) {
	mem, x := newIntegrator(t, integratorFile())
	assert.Equal(t, integratorPath, x.Path(reachID))

	rec, err := x.Extract(context.Background(), reachID, flpe.Constrained)
	require.NoError(t, err)
	assertShape(t, rec)
	assert.Zero(t, mem.Outstanding())
	assert.Equal(t, 1, mem.Opens())
	assert.Equal(t, flpe.Available, rec.Availability)
	assert.Equal(t, "integrator", rec.Layout)

	co := rec.Constrained
	assert.Equal(t, flpe.Values{0.04}, co.MetroMan.Ninf)
	assert.Equal(t, flpe.Values{-0.2}, co.MetroMan.P)
	assert.Equal(t, flpe.Values{0.031}, co.BAM.N)
	assert.Equal(t, flpe.Values{105}, co.BAM.Abar)
	assert.Equal(t, flpe.Values{0.3}, co.HiVDI.Beta)
	assert.Equal(t, flpe.Values{2.0}, co.MOMMA.Save)
	assert.Equal(t, flpe.Values{110}, co.SADS.Abar)
	assert.Equal(t, flpe.Values{115}, co.SIC4DVar.Abar)
}

// the bias is real in both branches while only the requested branch has
// real primary parameters
func TestIntegratorBiasInBothBranches(t *testing.T) {
	want := map[flpe.Algorithm]float64{
		flpe.AlgMetroMan: 0.11,
		flpe.AlgBAM:      0.12,
		flpe.AlgHiVDI:    0.13,
		flpe.AlgMOMMA:    0.14,
		flpe.AlgSADS:     0.15,
		flpe.AlgSIC4DVar: 0.16,
	}

	for _, rt := range flpe.RunTypes() {
		t.Run(rt.String(), func(t *testing.T) {
			_, x := newIntegrator(t, integratorFile())
			rec, err := x.Extract(context.Background(), reachID, rt)
			require.NoError(t, err)

			for alg, bias := range want {
				assert.Equal(t, flpe.Values{bias}, rec.Constrained.Bias(alg), "constrained %s", alg)
				assert.Equal(t, flpe.Values{bias}, rec.Unconstrained.Bias(alg), "unconstrained %s", alg)
			}

			other := rec.Branch(rt.Other())
			for _, p := range other.All() {
				params := p.Params()
				for _, param := range params[:len(params)-1] {
					assert.True(t, param.Values.IsSentinel(), "%s/%s", p.Algorithm(), param.Name)
				}
			}
			assert.False(t, rec.Requested().HiVDI.Alpha.IsSentinel())
		})
	}
}

func TestIntegratorErrors(t *testing.T) {
	t.Run("missing file has no fallback", func(t *testing.T) {
		_, x := newIntegrator(t, nil)
		rec, err := x.Extract(context.Background(), reachID, flpe.Unconstrained)
		require.Error(t, err)
		assert.Nil(t, rec)
		assert.True(t, errors.IsSourceNotFound(err))
	})

	t.Run("missing group", func(t *testing.T) {
		root := dataset.NewNode()
		root.Sub("metroman").Set("na", nil, 1).Set("x1", nil, 1).Set("Abar", nil, 1).Set("sbQ_rel", nil, 1)
		mem, x := newIntegrator(t, root)

		_, err := x.Extract(context.Background(), reachID, flpe.Unconstrained)
		require.Error(t, err)
		assert.True(t, errors.IsSchemaMismatch(err))
		assert.Contains(t, err.Error(), "neobam")
		assert.Zero(t, mem.Outstanding())
	})

	t.Run("missing bias", func(t *testing.T) {
		bad := integratorFile()
		bad.Sub("sad").Remove("sbQ_rel")
		mem, x := newIntegrator(t, bad)

		_, err := x.Extract(context.Background(), reachID, flpe.Unconstrained)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sad/sbQ_rel")
		assert.Zero(t, mem.Outstanding())
	})
}

func TestNew(t *testing.T) {
	store := dataset.NewMemory().Store()

	x, err := extract.New(extract.LayoutPerFile, flpeDir, extract.WithStore(store))
	require.NoError(t, err)
	assert.Equal(t, extract.LayoutPerFile, x.Layout())

	x, err = extract.New(extract.LayoutIntegrator, flpeDir, extract.WithStore(store))
	require.NoError(t, err)
	assert.Equal(t, extract.LayoutIntegrator, x.Layout())

	_, err = extract.New("sqlite", flpeDir)
	assert.True(t, errors.IsValidationError(err))

	_, err = extract.New(extract.LayoutPerFile, flpeDir, extract.WithStore(nil))
	assert.True(t, errors.IsValidationError(err))
}

func TestParseLayout(t *testing.T) {
	l, err := extract.ParseLayout(" Integrator ")
	require.NoError(t, err)
	assert.Equal(t, extract.LayoutIntegrator, l)

	_, err = extract.ParseLayout("flat")
	assert.True(t, errors.IsValidationError(err))
}
