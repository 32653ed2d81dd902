package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/swot-confluence/offline/pkg/constants"
	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/flpe"
	"github.com/swot-confluence/offline/pkg/logging"
)

// integratorGroups maps each algorithm to its group in an integrator file
// and the variables holding its primary parameters, in Params order.
var integratorGroups = []struct {
	alg    flpe.Algorithm
	group  string
	fields []string
}{
	{flpe.AlgMetroMan, "metroman", []string{"na", "x1", "Abar"}},
	{flpe.AlgBAM, "neobam", []string{"n", "a0"}},
	{flpe.AlgHiVDI, "hivdi", []string{"alpha", "beta", "Abar"}},
	{flpe.AlgMOMMA, "momma", []string{"B", "H", "Save"}},
	{flpe.AlgSADS, "sad", []string{"n", "a0"}},
	{flpe.AlgSIC4DVar, "sic4dvar", []string{"n", "a0"}},
}

// Integrator extracts records from consolidated {dir}/{id}_integrator.nc
// files.
type Integrator struct {
	dir   string
	store *dataset.Store
}

// NewIntegrator creates an integrator extractor rooted at dir.
func NewIntegrator(dir string, opts ...Option) (*Integrator, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Integrator{dir: dir, store: o.store}, nil
}

// Layout implements Extractor.
func (x *Integrator) Layout() Layout {
	return LayoutIntegrator
}

// Path returns the integrator file of reachID.
func (x *Integrator) Path(reachID int64) string {
	return filepath.Join(x.dir, fmt.Sprintf("%d%s%s", reachID, constants.IntegratorSuffix, constants.NetCDFExt))
}

// Extract implements Extractor. A missing integrator file is an error.
// The relative bias of each algorithm does not depend on the run type and
// is reported in both branches.
func (x *Integrator) Extract(ctx context.Context, reachID int64, runType flpe.RunType) (*flpe.Record, error) {
	if err := checkRunType(runType); err != nil {
		return nil, err
	}
	ctx = logging.WithLayout(logging.WithRunType(logging.WithReach(ctx, reachID), runType.String()), LayoutIntegrator.String())
	logger := logging.FromContext(ctx)

	path := x.Path(reachID)
	ds, err := x.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	requested := flpe.NoDataSet()
	biases := make(map[flpe.Algorithm]flpe.Values, len(integratorGroups))
	for _, ig := range integratorGroups {
		g, err := ds.Group(ig.group)
		if err != nil {
			return nil, err
		}
		vals, err := read(g, append(ig.fields, constants.BiasField)...)
		if err != nil {
			return nil, err
		}
		bias := vals[len(vals)-1]
		biases[ig.alg] = bias
		requested.Set(integratorParams(ig.alg, vals))
	}

	rec := flpe.NewRecord(reachID, runType, requested)
	rec.Layout = LayoutIntegrator.String()
	other := rec.Branch(runType.Other())
	for alg, bias := range biases {
		other.SetBias(alg, bias)
	}

	logger.Debug().Str("path", path).Msg("extracted integrator output")
	return rec, nil
}

// integratorParams builds the parameter record of alg from its primary
// fields followed by the bias.
func integratorParams(alg flpe.Algorithm, v []flpe.Values) flpe.AlgorithmParams {
	switch alg {
	case flpe.AlgMetroMan:
		return flpe.MetroMan{Ninf: v[0], P: v[1], Abar: v[2], SbQRel: v[3]}
	case flpe.AlgBAM:
		return flpe.BAM{N: v[0], Abar: v[1], SbQRel: v[2]}
	case flpe.AlgHiVDI:
		return flpe.HiVDI{Alpha: v[0], Beta: v[1], Abar: v[2], SbQRel: v[3]}
	case flpe.AlgMOMMA:
		return flpe.MOMMA{B: v[0], H: v[1], Save: flpe.Scalar(nanMean(v[2])), SbQRel: v[3]}
	case flpe.AlgSADS:
		return flpe.SADS{N: v[0], Abar: v[1], SbQRel: v[2]}
	default:
		return flpe.SIC4DVar{N: v[0], Abar: v[1], SbQRel: v[2]}
	}
}
