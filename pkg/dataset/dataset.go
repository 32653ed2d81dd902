// Package dataset provides read access to self-describing hierarchical
// datasets (NetCDF4/HDF5) as used by SWOT observation files, the SWORD reach
// database and FLPE algorithm outputs.
//
// Every numeric variable is exposed as a flat row-major float64 buffer with
// its shape. Fill values and values outside the declared valid range are
// replaced with NaN on read, packed values are unpacked, and integer
// variables additionally keep their raw values so identifiers can be matched
// exactly. Missing groups, variables and mismatched shapes are reported as
// schema mismatches carrying the file and field path.
package dataset

import (
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/swot-confluence/offline/pkg/errors"
)

var nan = math.NaN()

// Group is a node in a dataset hierarchy holding variables, dimensions and
// subgroups.
type Group interface {
	// Path is the slash-separated location of the group inside its file;
	// the root group has an empty path.
	Path() string

	// Variable reads the named variable of this group.
	Variable(name string) (*Variable, error)

	// HasVariable reports whether the group defines the named variable.
	HasVariable(name string) bool

	// Group returns the named subgroup.
	Group(name string) (Group, error)

	// Dimension returns the size of the named dimension.
	Dimension(name string) (int, bool)
}

// Dataset is an open file. Close releases the underlying handle.
type Dataset interface {
	Group
	File() string
	Close() error
}

// Decoder opens a file at path as a Dataset.
type Decoder interface {
	Decode(path string) (Dataset, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(path string) (Dataset, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(path string) (Dataset, error) {
	return f(path)
}

// Lookup resolves a slash-separated path such as "reach/wse" starting at g.
func Lookup(g Group, field string) (*Variable, error) {
	parts := strings.Split(strings.Trim(field, "/"), "/")
	cur := g
	for _, p := range parts[:len(parts)-1] {
		next, err := cur.Group(p)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur.Variable(parts[len(parts)-1])
}

// Variable is a decoded numeric variable.
type Variable struct {
	// File the variable was read from.
	File string
	// Name is the slash-separated path of the variable inside File.
	Name  string
	Shape []int
	// Data holds the values in row-major order with fill values set to NaN.
	Data []float64
	// Ints holds the raw values of integer variables, nil otherwise.
	Ints []int64
}

// NewVariable builds a variable and checks that data matches shape.
func NewVariable(file, name string, shape []int, data []float64) (*Variable, error) {
	v := &Variable{File: file, Name: name, Shape: append([]int(nil), shape...), Data: data}
	if size(shape) != len(data) {
		return nil, v.mismatch(fmt.Sprintf("%d values do not fill shape %v", len(data), shape))
	}
	return v, nil
}

// Len returns the number of elements.
func (v *Variable) Len() int {
	return len(v.Data)
}

// Float64s returns a copy of the values.
func (v *Variable) Float64s() []float64 {
	return append([]float64(nil), v.Data...)
}

// Scalar returns the single value of a one-element variable.
func (v *Variable) Scalar() (float64, error) {
	if len(v.Data) != 1 {
		return math.NaN(), v.mismatch(fmt.Sprintf("expected a single value, got shape %v", v.Shape))
	}
	return v.Data[0], nil
}

// Int64s returns the values as integers. Integer variables return their raw
// values; float variables are truncated and NaN entries become math.MinInt64.
func (v *Variable) Int64s() []int64 {
	if v.Ints != nil {
		return append([]int64(nil), v.Ints...)
	}
	out := make([]int64, len(v.Data))
	for i, x := range v.Data {
		if math.IsNaN(x) {
			out[i] = math.MinInt64
			continue
		}
		out[i] = int64(x)
	}
	return out
}

// Matches returns every index along the first axis whose identifier equals id.
func (v *Variable) Matches(id int64) []int {
	var idx []int
	for i, x := range v.Int64s() {
		if x == id {
			idx = append(idx, i)
		}
	}
	return idx
}

// IndexOf returns the single index along the first axis whose identifier
// equals id. An absent id is a ReachNotFound error; a repeated one is a
// schema mismatch since identifier arrays must be unique.
func (v *Variable) IndexOf(id int64) (int, error) {
	matches := v.Matches(id)
	switch len(matches) {
	case 0:
		return 0, errors.NewReachNotFoundError(v.File, id)
	case 1:
		return matches[0], nil
	default:
		return 0, v.mismatch(fmt.Sprintf("reach %d appears %d times", id, len(matches)))
	}
}

// Row selects index i along the first axis, dropping that axis.
func (v *Variable) Row(i int) (*Variable, error) {
	if len(v.Shape) == 0 {
		return nil, v.mismatch("cannot select a row of a scalar")
	}
	if i < 0 || i >= v.Shape[0] {
		return nil, v.mismatch(fmt.Sprintf("row %d out of range for shape %v", i, v.Shape))
	}
	stride := size(v.Shape[1:])
	out := &Variable{
		File:  v.File,
		Name:  v.Name,
		Shape: append([]int(nil), v.Shape[1:]...),
		Data:  append([]float64(nil), v.Data[i*stride:(i+1)*stride]...),
	}
	if v.Ints != nil {
		out.Ints = append([]int64(nil), v.Ints[i*stride:(i+1)*stride]...)
	}
	return out, nil
}

// Column selects index i along the last axis, dropping that axis. It is how
// per-reach slices are taken from database arrays shaped [..., nreach].
func (v *Variable) Column(i int) (*Variable, error) {
	if len(v.Shape) == 0 {
		return nil, v.mismatch("cannot select a column of a scalar")
	}
	last := v.Shape[len(v.Shape)-1]
	if i < 0 || i >= last {
		return nil, v.mismatch(fmt.Sprintf("column %d out of range for shape %v", i, v.Shape))
	}
	outer := size(v.Shape[:len(v.Shape)-1])
	out := &Variable{
		File:  v.File,
		Name:  v.Name,
		Shape: append([]int(nil), v.Shape[:len(v.Shape)-1]...),
		Data:  make([]float64, outer),
	}
	if v.Ints != nil {
		out.Ints = make([]int64, outer)
	}
	for k := 0; k < outer; k++ {
		out.Data[k] = v.Data[k*last+i]
		if v.Ints != nil {
			out.Ints[k] = v.Ints[k*last+i]
		}
	}
	return out, nil
}

// Reshape returns the values when their count matches the product of dims.
func (v *Variable) Reshape(dims ...int) ([]float64, error) {
	if size(dims) != len(v.Data) {
		return nil, v.mismatch(fmt.Sprintf("cannot reshape %v into %v", v.Shape, dims))
	}
	return v.Float64s(), nil
}

// CheckShape verifies the variable's shape. A negative entry in want matches
// any size on that axis.
func (v *Variable) CheckShape(want ...int) error {
	if len(want) != len(v.Shape) {
		return v.mismatch(fmt.Sprintf("shape %v, want rank %d", v.Shape, len(want)))
	}
	for i, w := range want {
		if w >= 0 && v.Shape[i] != w {
			return v.mismatch(fmt.Sprintf("shape %v, want %v", v.Shape, want))
		}
	}
	return nil
}

func (v *Variable) mismatch(msg string) error {
	return errors.NewSchemaMismatchError(v.File, v.Name, msg)
}

func size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func joinPath(group, name string) string {
	if group == "" {
		return name
	}
	return path.Join(group, name)
}
