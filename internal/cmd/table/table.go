// Package table converts assembled reach data into rows for table output.
package table

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/swot-confluence/offline"
	"github.com/swot-confluence/offline/pkg/extract"
	"github.com/swot-confluence/offline/pkg/flpe"
	"github.com/swot-confluence/offline/pkg/observation"
	"github.com/swot-confluence/offline/pkg/prior"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// maxInline is the number of elements shown before a series is summarized.
const maxInline = 4

// FormatFloat renders one value; NaN prints as "NaN" and the non-run
// sentinel as "-9999".
func FormatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case x == flpe.NonRunSentinel:
		return "-9999"
	default:
		return strconv.FormatFloat(x, 'g', 6, 64)
	}
}

// FormatValues renders a parameter value. Long series are summarized unless
// wide is set.
func FormatValues(v flpe.Values, wide bool) string {
	if len(v) == 0 {
		return "-"
	}
	if len(v) == 1 {
		return FormatFloat(v[0])
	}
	n := len(v)
	if !wide && n > maxInline {
		n = maxInline
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = FormatFloat(v[i])
	}
	s := "[" + strings.Join(parts, " ")
	if n < len(v) {
		s += fmt.Sprintf(" … (%d)", len(v))
	}
	return s + "]"
}

// RecordToTableData lists every parameter of a record, one row per run type,
// algorithm and parameter.
func RecordToTableData(r *flpe.Record, wide bool) Data {
	headers := []string{"Run Type", "Algorithm", "Parameter", "Value"}
	var rows [][]string
	r.Each(func(rt flpe.RunType, p flpe.AlgorithmParams) {
		for _, param := range p.Params() {
			rows = append(rows, []string{
				rt.String(),
				string(p.Algorithm()),
				param.Name,
				FormatValues(param.Values, wide),
			})
		}
	})
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
}

// PriorsToTableData lists the area fit and the discharge model priors.
func PriorsToTableData(p *prior.Priors) Data {
	fit := p.AreaFit
	rows := [][]string{
		{"area_fit", "h_variance", floatCell(fit.HVariance)},
		{"area_fit", "w_variance", floatCell(fit.WVariance)},
		{"area_fit", "hw_covariance", floatCell(fit.HWCovariance)},
		{"area_fit", "med_flow_area", floatCell(fit.MedFlowArea)},
		{"area_fit", "h_err_stdev", floatCell(fit.HErrStdev)},
		{"area_fit", "w_err_stdev", floatCell(fit.WErrStdev)},
		{"area_fit", "h_w_nobs", floatCell(fit.HWNobs)},
		{"area_fit", "fit_coeffs", floatsCell(fit.FitCoeffs[0][:]) + " " + floatsCell(fit.FitCoeffs[1][:])},
		{"area_fit", "h_break", floatsCell(fit.HBreak[:])},
		{"area_fit", "w_break", floatsCell(fit.WBreak[:])},
	}

	for _, rt := range flpe.RunTypes() {
		set := p.DischargeModels.Branch(rt)
		for _, a := range flpe.Algorithms() {
			params := set.Get(a)
			if params == nil {
				continue
			}
			keys := make([]string, 0, len(params))
			for k := range params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				rows = append(rows, []string{rt.String() + "/" + string(a), k, floatCell(params[k])})
			}
		}
	}

	return Data{
		Headers:         []string{"Group", "Field", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}

// ObservationToTableData lists the time series of a reach, one row per
// time step.
func ObservationToTableData(r *observation.Reach) Data {
	rows := make([][]string, 0, r.NT)
	for i := 0; i < r.NT; i++ {
		rows = append(rows, []string{
			strconv.Itoa(i),
			FormatFloat(at(r.TimeSteps, i)),
			FormatFloat(at(r.Height, i)),
			FormatFloat(at(r.Width, i)),
			FormatFloat(at(r.Slope, i)),
		})
	}
	return Data{
		Headers:         []string{"Step", "Time", "Height", "Width", "Slope"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

// BatchToTableData lists the outcome of every reach in a batch.
func BatchToTableData(results []offline.BatchResult) Data {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status, detail := "available", ""
		switch {
		case r.Err != nil:
			status, detail = "failed", r.Err.Error()
		case !r.Assembly.Available():
			status = "unavailable"
		}
		rows = append(rows, []string{strconv.FormatInt(r.ReachID, 10), status, detail})
	}
	return Data{
		Headers: []string{"Reach", "Status", "Detail"},
		Rows:    rows,
	}
}

// ManifestToTableData lists the indexed MetroMan files.
func ManifestToTableData(m *extract.Manifest) Data {
	files := m.Files()
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f})
	}
	return Data{
		Headers: []string{"File"},
		Rows:    rows,
	}
}

func at(v flpe.Values, i int) float64 {
	if i >= len(v) {
		return math.NaN()
	}
	return v[i]
}

func floatCell(f flpe.Float) string {
	return FormatFloat(float64(f))
}

func floatsCell(fs []flpe.Float) string {
	v := make(flpe.Values, len(fs))
	for i, f := range fs {
		v[i] = float64(f)
	}
	return FormatValues(v, true)
}
