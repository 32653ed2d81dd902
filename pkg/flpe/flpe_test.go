package flpe_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/flpe"
)

func TestParseRunType(t *testing.T) {
	tests := []struct {
		in      string
		want    flpe.RunType
		wantErr bool
	}{
		{"constrained", flpe.Constrained, false},
		{" Unconstrained ", flpe.Unconstrained, false},
		{"UNCONSTRAINED", flpe.Unconstrained, false},
		{"both", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := flpe.ParseRunType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestRunTypeOther(t *testing.T) {
	assert.Equal(t, flpe.Constrained, flpe.Unconstrained.Other())
	assert.Equal(t, flpe.Unconstrained, flpe.Constrained.Other())
	assert.False(t, flpe.RunType("mixed").Valid())
}

func TestParseAlgorithm(t *testing.T) {
	a, err := flpe.ParseAlgorithm("metroman")
	require.NoError(t, err)
	assert.Equal(t, flpe.AlgMetroMan, a)

	_, err = flpe.ParseAlgorithm("geobam")
	assert.True(t, errors.IsValidationError(err))
}

// every record, whatever its source, carries two run types with six
// algorithms each
func TestRecordShape(t *testing.T) {
	records := map[string]*flpe.Record{
		"no data":   flpe.NoDataRecord(1, flpe.Constrained),
		"requested": flpe.NewRecord(2, flpe.Unconstrained, flpe.NoDataSet()),
		"zero":      {ReachID: 3, RunType: flpe.Constrained},
	}

	for name, rec := range records {
		t.Run(name, func(t *testing.T) {
			seen := map[flpe.RunType][]flpe.Algorithm{}
			rec.Each(func(rt flpe.RunType, p flpe.AlgorithmParams) {
				seen[rt] = append(seen[rt], p.Algorithm())
			})
			assert.Len(t, seen, 2)
			for _, rt := range flpe.RunTypes() {
				assert.Equal(t, flpe.Algorithms(), seen[rt])
			}
		})
	}
}

func TestNoDataRecord(t *testing.T) {
	rec := flpe.NoDataRecord(74265000011, flpe.Unconstrained)
	assert.Equal(t, flpe.Unavailable, rec.Availability)

	rec.Each(func(rt flpe.RunType, p flpe.AlgorithmParams) {
		for _, param := range p.Params() {
			assert.True(t, param.Values.AllNaN(), "%s/%s/%s", rt, p.Algorithm(), param.Name)
			assert.Len(t, param.Values, 1)
		}
	})
}

func TestNewRecordFillsOtherBranch(t *testing.T) {
	set := flpe.NoDataSet()
	set.MOMMA.Save = flpe.Scalar(0.0003)

	rec := flpe.NewRecord(7, flpe.Constrained, set)
	assert.Equal(t, flpe.Available, rec.Availability)
	assert.Equal(t, 0.0003, rec.Constrained.MOMMA.Save.First())
	assert.Equal(t, 0.0003, rec.Requested().MOMMA.Save.First())

	for _, p := range rec.Unconstrained.All() {
		for _, param := range p.Params() {
			assert.True(t, param.Values.IsSentinel(), "%s/%s", p.Algorithm(), param.Name)
		}
	}
}

func TestRunSetAccessors(t *testing.T) {
	var set flpe.RunSet
	set.Set(flpe.HiVDI{Alpha: flpe.Scalar(2), Beta: flpe.Scalar(0.5)})
	set.SetBias(flpe.AlgHiVDI, flpe.Scalar(0.1))

	p, ok := set.Get(flpe.AlgHiVDI)
	require.True(t, ok)
	hv := p.(flpe.HiVDI)
	assert.Equal(t, 2.0, hv.Alpha.First())
	assert.Equal(t, flpe.Values{0.1}, set.Bias(flpe.AlgHiVDI))

	_, ok = set.Get("neoBAM")
	assert.False(t, ok)
	assert.Nil(t, set.Bias("neoBAM"))
}

func TestParamsEndWithBias(t *testing.T) {
	set := flpe.NonRunSet()
	for _, p := range set.All() {
		params := p.Params()
		require.NotEmpty(t, params)
		assert.Equal(t, "sbQ_rel", params[len(params)-1].Name, p.Algorithm())
	}
}

func TestValues(t *testing.T) {
	assert.True(t, flpe.Sentinel().IsSentinel())
	assert.False(t, flpe.Values{}.IsSentinel())
	assert.False(t, flpe.Values{-9999, 1}.IsSentinel())
	assert.True(t, flpe.Values{}.AllNaN())
	assert.True(t, math.IsNaN(flpe.Values{}.First()))
	assert.Equal(t, -9999.0, flpe.NonRunSentinel)
}

func TestValuesJSON(t *testing.T) {
	data, err := json.Marshal(flpe.Values{1.5, math.NaN(), math.Inf(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, null]`, string(data))

	var back flpe.Values
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 3)
	assert.Equal(t, 1.5, back[0])
	assert.True(t, math.IsNaN(back[1]))
}

func TestRecordJSON(t *testing.T) {
	rec := flpe.NoDataRecord(42, flpe.Constrained)
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.JSONEq(t, `42`, string(top["reach_id"]))

	raw := map[string]map[string]map[string]any{}
	for _, rt := range flpe.RunTypes() {
		var branch map[string]map[string]any
		require.NoError(t, json.Unmarshal(top[rt.String()], &branch))
		raw[rt.String()] = branch
	}
	assert.Len(t, raw["constrained"], 6)
	assert.Contains(t, raw["unconstrained"]["MetroMan"], "ninf")
	assert.Contains(t, raw["unconstrained"]["MOMMA"], "sbQ_rel")
}

func TestRecordYAML(t *testing.T) {
	rec := flpe.NewRecord(42, flpe.Unconstrained, flpe.NonRunSet())
	data, err := yaml.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reach_id: 42")
	assert.Contains(t, string(data), "run_type: unconstrained")
	assert.Contains(t, string(data), "SIC4DVar:")
}
