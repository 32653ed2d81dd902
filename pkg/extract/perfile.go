package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/swot-confluence/offline/pkg/constants"
	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/flpe"
	"github.com/swot-confluence/offline/pkg/logging"
)

// Source is the resolved output file of one algorithm for a reach.
type Source struct {
	Algorithm flpe.Algorithm `json:"algorithm" yaml:"algorithm"`
	Path      string         `json:"path" yaml:"path"`
	Present   bool           `json:"present" yaml:"present"`
}

// Sources is the resolution of every algorithm for a reach.
type Sources []Source

// Availability collapses the per-algorithm resolution into the reach flag:
// outputs are available only when every algorithm's file is present.
func (s Sources) Availability() flpe.Availability {
	for _, src := range s {
		if !src.Present {
			return flpe.Unavailable
		}
	}
	return flpe.Available
}

// Missing lists the algorithms without an output file.
func (s Sources) Missing() []string {
	var out []string
	for _, src := range s {
		if !src.Present {
			out = append(out, string(src.Algorithm))
		}
	}
	return out
}

// Path returns the resolved path of one algorithm.
func (s Sources) Path(a flpe.Algorithm) string {
	for _, src := range s {
		if src.Algorithm == a {
			return src.Path
		}
	}
	return ""
}

// PerFile extracts records from the per-file layout:
//
//	{dir}/geobam/{id}_geobam.nc
//	{dir}/hivdi/{id}_hivdi.nc
//	{dir}/momma/{id}_momma.nc
//	{dir}/sad/{id}_sad.nc
//	{dir}/sic4dvar/{id}_sic4dvar.nc
//	{dir}/metroman/*{id}*_metroman.nc
type PerFile struct {
	dir   string
	store *dataset.Store

	mu       sync.Mutex
	manifest *Manifest
}

// NewPerFile creates a per-file extractor rooted at dir.
func NewPerFile(dir string, opts ...Option) (*PerFile, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &PerFile{dir: dir, store: o.store, manifest: o.manifest}, nil
}

// Layout implements Extractor.
func (p *PerFile) Layout() Layout {
	return LayoutPerFile
}

// Manifest returns the MetroMan manifest, scanning the directory on first
// use. Only a successful scan is cached; a failed one is retried on the
// next call.
func (p *PerFile) Manifest(ctx context.Context) (*Manifest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.manifest != nil {
		return p.manifest, nil
	}
	m, err := BuildManifest(ctx, p.store, filepath.Join(p.dir, constants.MetroManDir))
	if err != nil {
		return nil, err
	}
	p.manifest = m
	return m, nil
}

func (p *PerFile) fixedPath(sub string, reachID int64) string {
	return filepath.Join(p.dir, sub, fmt.Sprintf("%d_%s%s", reachID, sub, constants.NetCDFExt))
}

// Resolve locates the output file of every algorithm for reachID. A reach
// without a MetroMan file is reported as missing it; a reach matching
// several MetroMan files is an error.
func (p *PerFile) Resolve(ctx context.Context, reachID int64) (Sources, error) {
	fixed := []struct {
		alg flpe.Algorithm
		sub string
	}{
		{flpe.AlgBAM, constants.GeoBAMDir},
		{flpe.AlgHiVDI, constants.HiVDIDir},
		{flpe.AlgMOMMA, constants.MOMMADir},
		{flpe.AlgSADS, constants.SADDir},
		{flpe.AlgSIC4DVar, constants.SIC4DVarDir},
	}

	sources := make(Sources, 0, len(fixed)+1)

	m, err := p.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	mm := Source{Algorithm: flpe.AlgMetroMan}
	if path, err := m.Lookup(reachID); err == nil {
		mm.Path = path
		mm.Present = p.store.Exists(path)
	} else if len(m.Matches(reachID)) > 1 {
		return nil, err
	} else {
		mm.Path = m.pattern(reachID)
	}
	sources = append(sources, mm)

	for _, f := range fixed {
		path := p.fixedPath(f.sub, reachID)
		sources = append(sources, Source{Algorithm: f.alg, Path: path, Present: p.store.Exists(path)})
	}
	return sources, nil
}

// Extract implements Extractor. When any algorithm's file is missing the
// whole reach is reported as having no data.
func (p *PerFile) Extract(ctx context.Context, reachID int64, runType flpe.RunType) (*flpe.Record, error) {
	if err := checkRunType(runType); err != nil {
		return nil, err
	}
	ctx = logging.WithLayout(logging.WithRunType(logging.WithReach(ctx, reachID), runType.String()), LayoutPerFile.String())
	logger := logging.FromContext(ctx)

	sources, err := p.Resolve(ctx, reachID)
	if err != nil {
		return nil, err
	}

	if sources.Availability() == flpe.Unavailable {
		logger.Warn().
			Strs("missing", sources.Missing()).
			Msg("FLPE outputs incomplete, reporting no data")
		rec := flpe.NoDataRecord(reachID, runType)
		rec.Layout = LayoutPerFile.String()
		return rec, nil
	}

	set := flpe.NoDataSet()
	readers := []struct {
		alg  flpe.Algorithm
		read func(dataset.Dataset, int64) (flpe.AlgorithmParams, error)
	}{
		{flpe.AlgMetroMan, readMetroMan},
		{flpe.AlgBAM, readGeoBAM},
		{flpe.AlgHiVDI, readHiVDI},
		{flpe.AlgMOMMA, readMOMMA},
		{flpe.AlgSADS, readSAD},
		{flpe.AlgSIC4DVar, readSIC4DVar},
	}
	for _, r := range readers {
		params, err := p.readFile(sources.Path(r.alg), reachID, r.read)
		if err != nil {
			return nil, fmt.Errorf("extract %s for reach %d: %w", r.alg, reachID, err)
		}
		set.Set(params)
		logger.Debug().
			Str("algorithm", string(r.alg)).
			Str("path", sources.Path(r.alg)).
			Msg("extracted FLPE output")
	}

	rec := flpe.NewRecord(reachID, runType, set)
	rec.Layout = LayoutPerFile.String()
	return rec, nil
}

func (p *PerFile) readFile(path string, reachID int64, read func(dataset.Dataset, int64) (flpe.AlgorithmParams, error)) (flpe.AlgorithmParams, error) {
	ds, err := p.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	return read(ds, reachID)
}

func readGeoBAM(ds dataset.Dataset, _ int64) (flpe.AlgorithmParams, error) {
	logn, err := dataset.Lookup(ds, "logn/mean")
	if err != nil {
		return nil, err
	}
	n := logMeanExp(logn)
	if len(n) == 0 {
		n = flpe.NaN()
	}
	bias, err := optionalBias(ds)
	if err != nil {
		return nil, err
	}
	return flpe.BAM{N: n, Abar: geoBAMAbar(), SbQRel: bias}, nil
}

func readHiVDI(ds dataset.Dataset, _ int64) (flpe.AlgorithmParams, error) {
	reach, err := ds.Group(constants.ReachGroup)
	if err != nil {
		return nil, err
	}
	vals, err := read(reach, "alpha", "beta", "A0")
	if err != nil {
		return nil, err
	}
	bias, err := optionalBias(ds)
	if err != nil {
		return nil, err
	}
	return flpe.HiVDI{Alpha: vals[0], Beta: vals[1], Abar: vals[2], SbQRel: bias}, nil
}

func readMOMMA(ds dataset.Dataset, _ int64) (flpe.AlgorithmParams, error) {
	vals, err := read(ds, "zero_flow_stage", "bankfull_stage")
	if err != nil {
		return nil, err
	}
	slope, err := ds.Variable("slope")
	if err != nil {
		return nil, err
	}
	bias, err := optionalBias(ds)
	if err != nil {
		return nil, err
	}
	return flpe.MOMMA{B: vals[0], H: vals[1], Save: flpe.Scalar(nanMean(slope.Data)), SbQRel: bias}, nil
}

func readSAD(ds dataset.Dataset, _ int64) (flpe.AlgorithmParams, error) {
	vals, err := read(ds, "n", "A0")
	if err != nil {
		return nil, err
	}
	bias, err := optionalBias(ds)
	if err != nil {
		return nil, err
	}
	return flpe.SADS{N: vals[0], Abar: vals[1], SbQRel: bias}, nil
}

func readMetroMan(ds dataset.Dataset, reachID int64) (flpe.AlgorithmParams, error) {
	vals, err := readRow(ds, reachID, "nahat", "x1hat", "A0hat")
	if err != nil {
		return nil, err
	}
	bias, err := optionalBias(ds)
	if err != nil {
		return nil, err
	}
	return flpe.MetroMan{Ninf: vals[0], P: vals[1], Abar: vals[2], SbQRel: bias}, nil
}

// readSIC4DVar selects the reach's row when the file covers several
// reaches and reads the file whole otherwise.
func readSIC4DVar(ds dataset.Dataset, reachID int64) (flpe.AlgorithmParams, error) {
	var (
		vals []flpe.Values
		err  error
	)
	if ds.HasVariable(constants.ReachIDField) {
		vals, err = readRow(ds, reachID, "n", "A0")
	} else {
		vals, err = read(ds, "n", "A0")
	}
	if err != nil {
		return nil, err
	}
	bias, err := optionalBias(ds)
	if err != nil {
		return nil, err
	}
	return flpe.SIC4DVar{N: vals[0], Abar: vals[1], SbQRel: bias}, nil
}

// read loads whole variables of g.
func read(g dataset.Group, names ...string) ([]flpe.Values, error) {
	out := make([]flpe.Values, len(names))
	for i, name := range names {
		v, err := g.Variable(name)
		if err != nil {
			return nil, err
		}
		out[i] = values(v)
	}
	return out, nil
}

// readRow loads the row of reachID from variables indexed by the file's own
// reach_id array.
func readRow(g dataset.Group, reachID int64, names ...string) ([]flpe.Values, error) {
	ids, err := g.Variable(constants.ReachIDField)
	if err != nil {
		return nil, err
	}
	idx, err := ids.IndexOf(reachID)
	if err != nil {
		return nil, err
	}
	out := make([]flpe.Values, len(names))
	for i, name := range names {
		v, err := g.Variable(name)
		if err != nil {
			return nil, err
		}
		row, err := v.Row(idx)
		if err != nil {
			return nil, err
		}
		out[i] = values(row)
	}
	return out, nil
}

// optionalBias reads sbQ_rel from the root or the reach group. Its absence
// is expected for most algorithms and yields NaN.
func optionalBias(ds dataset.Dataset) (flpe.Values, error) {
	if ds.HasVariable(constants.BiasField) {
		v, err := ds.Variable(constants.BiasField)
		if err != nil {
			return nil, err
		}
		return values(v), nil
	}
	reach, err := ds.Group(constants.ReachGroup)
	if err != nil {
		if errors.IsSchemaMismatch(err) {
			return flpe.NaN(), nil
		}
		return nil, err
	}
	if !reach.HasVariable(constants.BiasField) {
		return flpe.NaN(), nil
	}
	v, err := reach.Variable(constants.BiasField)
	if err != nil {
		return nil, err
	}
	return values(v), nil
}
