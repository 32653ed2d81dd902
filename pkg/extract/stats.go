package extract

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/swot-confluence/offline/pkg/constants"
	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/flpe"
)

// nanMean is the arithmetic mean of the non-NaN elements of x. It is NaN
// when x holds no such element.
func nanMean(x []float64) float64 {
	kept := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return math.NaN()
	}
	return stat.Mean(kept, nil)
}

// nanMeanAxis0 reduces v along its first axis with nanMean. Variables of
// rank zero or one reduce to a single value.
func nanMeanAxis0(v *dataset.Variable) flpe.Values {
	if len(v.Shape) <= 1 {
		return flpe.Values{nanMean(v.Data)}
	}
	rows := v.Shape[0]
	stride := 1
	for _, d := range v.Shape[1:] {
		stride *= d
	}
	out := make(flpe.Values, stride)
	col := make([]float64, rows)
	for j := 0; j < stride; j++ {
		for i := 0; i < rows; i++ {
			col[i] = v.Data[i*stride+j]
		}
		out[j] = nanMean(col)
	}
	return out
}

// logMeanExp reduces log-space samples along the first axis and returns the
// result in linear space.
func logMeanExp(v *dataset.Variable) flpe.Values {
	out := nanMeanAxis0(v)
	for i := range out {
		out[i] = math.Exp(out[i])
	}
	return out
}

// geoBAMAbar is the geoBAM cross-sectional area baseline. It is not computed
// yet and always reports GeoBAMAbarPlaceholder.
// TODO: reduce the neoBAM A0 posterior once its output layout is fixed.
func geoBAMAbar() flpe.Values {
	return flpe.Scalar(constants.GeoBAMAbarPlaceholder)
}

// values converts a variable to parameter values. Empty variables become a
// single NaN so every parameter has at least one element.
func values(v *dataset.Variable) flpe.Values {
	if v.Len() == 0 {
		return flpe.NaN()
	}
	return flpe.Values(v.Float64s())
}
