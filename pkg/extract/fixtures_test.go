package extract_test

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/flpe"
)

const (
	reachID   int64 = 74265000011
	neighbour int64 = 74265000021
	flpeDir         = "/flpe"
)

var nan = math.NaN()

// perFileOutputs returns the per-file outputs of reachID keyed by path,
// with every algorithm present.
func perFileOutputs() map[string]*dataset.Node {
	geobam := dataset.NewNode()
	geobam.Sub("logn").Set("mean", nil, 1, 1, 1)

	hivdi := dataset.NewNode()
	hivdi.Sub("reach").
		Set("alpha", nil, 2.5).
		Set("beta", nil, 0.3).
		Set("A0", nil, 120)

	momma := dataset.NewNode().
		Set("zero_flow_stage", nil, 5).
		Set("bankfull_stage", nil, 9).
		Set("slope", nil, 1.0, nan, 3.0)

	sad := dataset.NewNode().
		Set("n", nil, 0.03).
		Set("A0", nil, 110).
		Set("sbQ_rel", nil, 0.2)

	sic := dataset.NewNode().
		Set("n", nil, 0.035).
		Set("A0", nil, 115)

	metroman := dataset.NewNode().
		SetInts("reach_id", nil, neighbour, reachID).
		Set("nahat", nil, 0.05, 0.04).
		Set("x1hat", nil, -0.1, -0.2).
		Set("A0hat", nil, 90, 100)

	return map[string]*dataset.Node{
		"geobam":   geobam,
		"hivdi":    hivdi,
		"momma":    momma,
		"sad":      sad,
		"sic4dvar": sic,
		"metroman": metroman,
	}
}

func perFilePath(alg string) string {
	if alg == "metroman" {
		return filepath.Join(flpeDir, "metroman", "set7_74265000021_74265000011_metroman.nc")
	}
	return filepath.Join(flpeDir, alg, "74265000011_"+alg+".nc")
}

// perFileLayout writes the outputs of reachID, leaving out the algorithms
// named in skip.
func perFileLayout(t *testing.T, skip ...string) *dataset.Memory {
	t.Helper()
	mem := dataset.NewMemory()
	skipped := make(map[string]bool)
	for _, s := range skip {
		skipped[s] = true
	}
	for alg, node := range perFileOutputs() {
		if skipped[alg] {
			continue
		}
		require.NoError(t, mem.Add(perFilePath(alg), node))
	}
	return mem
}

// integratorFile returns a consolidated output of reachID with a distinct
// bias per algorithm.
func integratorFile() *dataset.Node {
	root := dataset.NewNode()
	root.Sub("metroman").Set("na", nil, 0.04).Set("x1", nil, -0.2).Set("Abar", nil, 100).Set("sbQ_rel", nil, 0.11)
	root.Sub("neobam").Set("n", nil, 0.031).Set("a0", nil, 105).Set("sbQ_rel", nil, 0.12)
	root.Sub("hivdi").Set("alpha", nil, 2.5).Set("beta", nil, 0.3).Set("Abar", nil, 120).Set("sbQ_rel", nil, 0.13)
	root.Sub("momma").Set("B", nil, 5).Set("H", nil, 9).Set("Save", nil, 1, nan, 3).Set("sbQ_rel", nil, 0.14)
	root.Sub("sad").Set("n", nil, 0.03).Set("a0", nil, 110).Set("sbQ_rel", nil, 0.15)
	root.Sub("sic4dvar").Set("n", nil, 0.035).Set("a0", nil, 115).Set("sbQ_rel", nil, 0.16)
	return root
}

// assertShape checks both run types carry all six algorithms.
func assertShape(t *testing.T, rec *flpe.Record) {
	t.Helper()
	count := map[flpe.RunType]int{}
	rec.Each(func(rt flpe.RunType, p flpe.AlgorithmParams) {
		count[rt]++
		for _, param := range p.Params() {
			require.NotEmpty(t, param.Values, "%s/%s/%s", rt, p.Algorithm(), param.Name)
		}
	})
	require.Equal(t, map[flpe.RunType]int{flpe.Constrained: 6, flpe.Unconstrained: 6}, count)
}

// branchJSON encodes a run set so sets holding NaN can be compared.
func branchJSON(t *testing.T, set flpe.RunSet) string {
	t.Helper()
	data, err := json.Marshal(set)
	require.NoError(t, err)
	return string(data)
}
