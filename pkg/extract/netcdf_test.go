package extract

import (
	"path/filepath"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/flpe"
)

// openNetCDF writes a flat NetCDF3 file and opens it through the OS store.
func openNetCDF(t *testing.T, name string, add func(w *cdf.CDFWriter)) dataset.Dataset {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	w, err := cdf.OpenWriter(path)
	require.NoError(t, err)
	add(w)
	require.NoError(t, w.Close())

	ds, err := dataset.NewStore().Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func fillValue(t *testing.T, fill float64) api.AttributeMap {
	t.Helper()
	om, err := util.NewOrderedMap([]string{"_FillValue"}, map[string]any{"_FillValue": fill})
	require.NoError(t, err)
	return om
}

func TestReadNetCDFOutputs(t *testing.T) {
	t.Run("momma", func(t *testing.T) {
		ds := openNetCDF(t, "74265000011_momma.nc", func(w *cdf.CDFWriter) {
			require.NoError(t, w.AddVar("zero_flow_stage", api.Variable{Values: float64(5)}))
			require.NoError(t, w.AddVar("bankfull_stage", api.Variable{Values: float64(9)}))
			require.NoError(t, w.AddVar("slope", api.Variable{
				Values:     []float64{1, -999, 3},
				Dimensions: []string{"nt"},
				Attributes: fillValue(t, -999),
			}))
		})

		p, err := readMOMMA(ds, 74265000011)
		require.NoError(t, err)
		m, ok := p.(flpe.MOMMA)
		require.True(t, ok)
		assert.Equal(t, flpe.Values{5}, m.B)
		assert.Equal(t, flpe.Values{9}, m.H)
		assert.InDelta(t, 2.0, m.Save.First(), 1e-12)
		assert.True(t, m.SbQRel.AllNaN(), "no bias variable and no reach group")
	})

	t.Run("sad", func(t *testing.T) {
		ds := openNetCDF(t, "74265000011_sad.nc", func(w *cdf.CDFWriter) {
			require.NoError(t, w.AddVar("n", api.Variable{Values: []float64{0.03}, Dimensions: []string{"one"}}))
			require.NoError(t, w.AddVar("A0", api.Variable{Values: []float64{110}, Dimensions: []string{"one"}}))
			require.NoError(t, w.AddVar("sbQ_rel", api.Variable{Values: []float64{0.2}, Dimensions: []string{"one"}}))
		})

		p, err := readSAD(ds, 74265000011)
		require.NoError(t, err)
		s, ok := p.(flpe.SADS)
		require.True(t, ok)
		assert.Equal(t, flpe.Values{0.03}, s.N)
		assert.Equal(t, flpe.Values{110}, s.Abar)
		assert.Equal(t, flpe.Values{0.2}, s.SbQRel)
	})

	t.Run("missing variable", func(t *testing.T) {
		ds := openNetCDF(t, "74265000011_sad.nc", func(w *cdf.CDFWriter) {
			require.NoError(t, w.AddVar("n", api.Variable{Values: []float64{0.03}, Dimensions: []string{"one"}}))
		})

		_, err := readSAD(ds, 74265000011)
		assert.ErrorContains(t, err, "A0")
	})
}
