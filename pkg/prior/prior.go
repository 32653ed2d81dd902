// Package prior reads per-reach geomorphic priors from the SWORD reach
// database: the area fit relating cross-sectional area to height and width,
// and the prior discharge-model parameters of each FLPE algorithm for both
// run types.
package prior

import (
	"context"

	"github.com/swot-confluence/offline/pkg/constants"
	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/flpe"
	"github.com/swot-confluence/offline/pkg/logging"
)

// AreaFit holds the area-fit coefficients of a reach.
type AreaFit struct {
	HVariance    flpe.Float `json:"h_variance" yaml:"h_variance"`
	WVariance    flpe.Float `json:"w_variance" yaml:"w_variance"`
	HWCovariance flpe.Float `json:"hw_covariance" yaml:"hw_covariance"`
	MedFlowArea  flpe.Float `json:"med_flow_area" yaml:"med_flow_area"`
	HErrStdev    flpe.Float `json:"h_err_stdev" yaml:"h_err_stdev"`
	WErrStdev    flpe.Float `json:"w_err_stdev" yaml:"w_err_stdev"`
	HWNobs       flpe.Float `json:"h_w_nobs" yaml:"h_w_nobs"`

	FitCoeffs [2][3]flpe.Float `json:"fit_coeffs" yaml:"fit_coeffs"`
	HBreak    [4]flpe.Float    `json:"h_break" yaml:"h_break"`
	WBreak    [4]flpe.Float    `json:"w_break" yaml:"w_break"`
}

// ModelParams maps a prior parameter name to its value for one algorithm.
type ModelParams map[string]flpe.Float

// ModelSet holds the prior parameters of every algorithm for one run type.
// SIC4DVar is nil when the database carries no SIC4DVar priors.
type ModelSet struct {
	MetroMan ModelParams `json:"MetroMan" yaml:"MetroMan"`
	BAM      ModelParams `json:"BAM" yaml:"BAM"`
	HiVDI    ModelParams `json:"HiVDI" yaml:"HiVDI"`
	MOMMA    ModelParams `json:"MOMMA" yaml:"MOMMA"`
	SADS     ModelParams `json:"SADS" yaml:"SADS"`
	SIC4DVar ModelParams `json:"SIC4DVar,omitempty" yaml:"SIC4DVar,omitempty"`
}

// Get returns the parameters of one algorithm.
func (s *ModelSet) Get(a flpe.Algorithm) ModelParams {
	switch a {
	case flpe.AlgMetroMan:
		return s.MetroMan
	case flpe.AlgBAM:
		return s.BAM
	case flpe.AlgHiVDI:
		return s.HiVDI
	case flpe.AlgMOMMA:
		return s.MOMMA
	case flpe.AlgSADS:
		return s.SADS
	case flpe.AlgSIC4DVar:
		return s.SIC4DVar
	}
	return nil
}

func (s *ModelSet) set(a flpe.Algorithm, p ModelParams) {
	switch a {
	case flpe.AlgMetroMan:
		s.MetroMan = p
	case flpe.AlgBAM:
		s.BAM = p
	case flpe.AlgHiVDI:
		s.HiVDI = p
	case flpe.AlgMOMMA:
		s.MOMMA = p
	case flpe.AlgSADS:
		s.SADS = p
	case flpe.AlgSIC4DVar:
		s.SIC4DVar = p
	}
}

// DischargeModels holds the prior parameters for both run types.
type DischargeModels struct {
	Unconstrained ModelSet `json:"unconstrained" yaml:"unconstrained"`
	Constrained   ModelSet `json:"constrained" yaml:"constrained"`
}

// Branch returns the model set of rt.
func (d *DischargeModels) Branch(rt flpe.RunType) *ModelSet {
	if rt == flpe.Constrained {
		return &d.Constrained
	}
	return &d.Unconstrained
}

// Priors is everything the database holds for one reach.
type Priors struct {
	ReachID         int64           `json:"reach_id" yaml:"reach_id"`
	Index           int             `json:"index" yaml:"index"`
	AreaFit         AreaFit         `json:"area_fit" yaml:"area_fit"`
	DischargeModels DischargeModels `json:"discharge_models" yaml:"discharge_models"`
}

// Parameter names per algorithm, as stored under
// reaches/discharge_models/{run type}/{algorithm}.
var modelKeys = map[flpe.Algorithm][]string{
	flpe.AlgMetroMan: {"Abar", "Abar_stdev", "ninf", "ninf_stdev", "p", "p_stdev",
		"ninf_p_cor", "p_Abar_cor", "ninf_Abar_cor"},
	flpe.AlgBAM:      {"Abar", "n"},
	flpe.AlgHiVDI:    {"Abar", "alpha", "beta"},
	flpe.AlgMOMMA:    {"B", "H", "Save"},
	flpe.AlgSADS:     {"Abar", "n"},
	flpe.AlgSIC4DVar: {"Abar", "n"},
}

// ModelKeys returns the prior parameter names of an algorithm.
func ModelKeys(a flpe.Algorithm) []string {
	return append([]string(nil), modelKeys[a]...)
}

// optional reports algorithms whose group may be absent from a database.
func optional(a flpe.Algorithm) bool {
	return a == flpe.AlgSIC4DVar
}

// Read loads the priors of reachID from the database at dbPath.
func Read(ctx context.Context, store *dataset.Store, dbPath string, reachID int64) (*Priors, error) {
	ctx = logging.WithReach(ctx, reachID)
	logger := logging.FromContext(ctx)

	ds, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	reaches, err := ds.Group(constants.ReachesGroup)
	if err != nil {
		return nil, err
	}

	idx, err := Index(reaches, reachID)
	if err != nil {
		return nil, err
	}

	out := &Priors{ReachID: reachID, Index: idx}

	fits, err := reaches.Group(constants.AreaFitsGroup)
	if err != nil {
		return nil, err
	}
	if err := readAreaFit(fits, idx, &out.AreaFit); err != nil {
		return nil, err
	}

	models, err := reaches.Group(constants.DischargeModelsGroup)
	if err != nil {
		return nil, err
	}
	for _, rt := range flpe.RunTypes() {
		g, err := models.Group(rt.String())
		if err != nil {
			return nil, err
		}
		if err := readModelSet(g, idx, out.DischargeModels.Branch(rt)); err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Str("path", dbPath).
		Int("index", idx).
		Msg("read reach priors")

	return out, nil
}

// Index returns the position of reachID in the reach_id array of g. The
// identifier must appear exactly once.
func Index(g dataset.Group, reachID int64) (int, error) {
	ids, err := g.Variable(constants.ReachIDField)
	if err != nil {
		return 0, err
	}
	return ids.IndexOf(reachID)
}

func readAreaFit(g dataset.Group, idx int, fit *AreaFit) error {
	scalars := []struct {
		name string
		dst  *flpe.Float
	}{
		{"h_variance", &fit.HVariance},
		{"w_variance", &fit.WVariance},
		{"hw_covariance", &fit.HWCovariance},
		{"med_flow_area", &fit.MedFlowArea},
		{"h_err_stdev", &fit.HErrStdev},
		{"w_err_stdev", &fit.WErrStdev},
		{"h_w_nobs", &fit.HWNobs},
	}
	for _, s := range scalars {
		v, err := at(g, s.name, idx)
		if err != nil {
			return err
		}
		*s.dst = flpe.Float(v)
	}

	coeffs, err := column(g, constants.FitCoeffsField, idx, 2, 3)
	if err != nil {
		return err
	}
	for i := range fit.FitCoeffs {
		for j := range fit.FitCoeffs[i] {
			fit.FitCoeffs[i][j] = flpe.Float(coeffs[i*3+j])
		}
	}

	hb, err := column(g, constants.HBreakField, idx, 4)
	if err != nil {
		return err
	}
	for i := range fit.HBreak {
		fit.HBreak[i] = flpe.Float(hb[i])
	}

	wb, err := column(g, constants.WBreakField, idx, 4)
	if err != nil {
		return err
	}
	for i := range fit.WBreak {
		fit.WBreak[i] = flpe.Float(wb[i])
	}
	return nil
}

func readModelSet(g dataset.Group, idx int, set *ModelSet) error {
	for _, a := range flpe.Algorithms() {
		ag, err := g.Group(string(a))
		if err != nil {
			if optional(a) && errors.IsSchemaMismatch(err) {
				continue
			}
			return err
		}
		params := make(ModelParams, len(modelKeys[a]))
		for _, key := range modelKeys[a] {
			v, err := at(ag, key, idx)
			if err != nil {
				return err
			}
			params[key] = flpe.Float(v)
		}
		set.set(a, params)
	}
	return nil
}

// at returns element idx of a one-dimensional per-reach variable.
func at(g dataset.Group, name string, idx int) (float64, error) {
	v, err := g.Variable(name)
	if err != nil {
		return 0, err
	}
	if err := v.CheckShape(-1); err != nil {
		return 0, err
	}
	col, err := v.Column(idx)
	if err != nil {
		return 0, err
	}
	return col.Scalar()
}

// column takes the per-reach slice of a variable shaped [dims..., nreach]
// and checks it holds exactly dims values.
func column(g dataset.Group, name string, idx int, dims ...int) ([]float64, error) {
	v, err := g.Variable(name)
	if err != nil {
		return nil, err
	}
	if err := v.CheckShape(append(append([]int(nil), dims...), -1)...); err != nil {
		return nil, err
	}
	col, err := v.Column(idx)
	if err != nil {
		return nil, err
	}
	return col.Reshape(dims...)
}
