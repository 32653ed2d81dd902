package dataset

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"sync"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/swot-confluence/offline/pkg/errors"
)

// fillAttributes are the attributes whose value marks a missing element.
var fillAttributes = []string{"_FillValue", "missing_value"}

// defaultFills are the netCDF library fill values used for elements that
// were never written when a variable declares no _FillValue. Byte types
// have no default fill masking.
var defaultFills = map[reflect.Kind]float64{
	reflect.Int16:   -32767,
	reflect.Uint16:  65535,
	reflect.Int32:   -2147483647,
	reflect.Uint32:  4294967295,
	reflect.Int64:   -9223372036854775806,
	reflect.Uint64:  18446744073709551614,
	reflect.Float32: float64(float32(9.9692099683868690e+36)),
	reflect.Float64: 9.9692099683868690e+36,
}

// NetCDF decodes NetCDF3 and NetCDF4 files with go-native-netcdf.
type NetCDF struct{}

// Decode implements Decoder.
func (NetCDF) Decode(path string) (Dataset, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	root := &ncDataset{file: path}
	root.ncGroup = ncGroup{g: g, owner: root}
	return root, nil
}

// ncDataset tracks subgroups opened from the root so Close releases them all.
type ncDataset struct {
	ncGroup
	file string

	mu     sync.Mutex
	opened []api.Group
	closed bool
}

func (d *ncDataset) File() string {
	return d.file
}

func (d *ncDataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	for i := len(d.opened) - 1; i >= 0; i-- {
		d.opened[i].Close()
	}
	d.g.Close()
	return nil
}

func (d *ncDataset) track(g api.Group) {
	d.mu.Lock()
	d.opened = append(d.opened, g)
	d.mu.Unlock()
}

type ncGroup struct {
	g     api.Group
	path  string
	owner *ncDataset
}

func (n *ncGroup) Path() string {
	return n.path
}

func (n *ncGroup) HasVariable(name string) bool {
	return slices.Contains(n.g.ListVariables(), name)
}

func (n *ncGroup) Variable(name string) (*Variable, error) {
	field := joinPath(n.path, name)
	v, err := n.g.GetVariable(name)
	if err != nil || v == nil {
		return nil, errors.NewSchemaMismatchError(n.owner.file, field, "variable not found")
	}
	return decodeVariable(n.owner.file, field, v)
}

func (n *ncGroup) Group(name string) (Group, error) {
	field := joinPath(n.path, name)
	sub, err := n.g.GetGroup(name)
	if err != nil || sub == nil {
		return nil, errors.NewSchemaMismatchError(n.owner.file, field, "group not found")
	}
	n.owner.track(sub)
	return &ncGroup{g: sub, path: field, owner: n.owner}, nil
}

func (n *ncGroup) Dimension(name string) (int, bool) {
	size, ok := n.g.GetDimension(name)
	return int(size), ok
}

// decodeVariable flattens the library's nested slices, masks missing
// elements and unpacks scale_factor/add_offset.
func decodeVariable(file, field string, v *api.Variable) (*Variable, error) {
	data, ints, shape, err := flatten(v.Values)
	if err != nil {
		return nil, errors.NewSchemaMismatchError(file, field, err.Error())
	}
	attrs := attributes{v.Attributes}

	fills := attrs.values(fillAttributes...)
	if _, declared := attrs.get("_FillValue"); !declared {
		if fill, ok := defaultFills[elementKind(v.Values)]; ok {
			fills = append(fills, fill)
		}
	}
	maskFill(data, fills)

	lo, hi := attrs.validRange()
	maskRange(data, lo, hi)

	scale, hasScale := attrs.scalar("scale_factor")
	offset, hasOffset := attrs.scalar("add_offset")
	if hasScale || hasOffset {
		if !hasScale {
			scale = 1
		}
		unpack(data, scale, offset)
		ints = nil
	}
	return &Variable{File: file, Name: field, Shape: shape, Data: data, Ints: ints}, nil
}

// attributes reads numeric attribute values, skipping ones that are absent
// or not numeric.
type attributes struct {
	m api.AttributeMap
}

func (a attributes) get(name string) (any, bool) {
	if a.m == nil {
		return nil, false
	}
	return a.m.Get(name)
}

func (a attributes) values(names ...string) []float64 {
	var out []float64
	for _, name := range names {
		raw, ok := a.get(name)
		if !ok {
			continue
		}
		vals, _, _, err := flatten(raw)
		if err != nil {
			continue
		}
		out = append(out, vals...)
	}
	return out
}

func (a attributes) scalar(name string) (float64, bool) {
	vals := a.values(name)
	if len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

// validRange returns the inclusive bounds from valid_range, or from
// valid_min and valid_max. Missing bounds are infinite.
func (a attributes) validRange() (lo, hi float64) {
	lo, hi = math.Inf(-1), math.Inf(1)
	if r := a.values("valid_range"); len(r) == 2 {
		return r[0], r[1]
	}
	if v, ok := a.scalar("valid_min"); ok {
		lo = v
	}
	if v, ok := a.scalar("valid_max"); ok {
		hi = v
	}
	return lo, hi
}

// elementKind returns the kind of the innermost element of values.
func elementKind(values any) reflect.Kind {
	if values == nil {
		return reflect.Invalid
	}
	t := reflect.TypeOf(values)
	for t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	return t.Kind()
}

// flatten converts a scalar or (nested) slice of numbers to row-major
// float64 values, the raw integers for integral element types, and the shape.
func flatten(values any) ([]float64, []int64, []int, error) {
	rv := reflect.ValueOf(values)
	if !rv.IsValid() {
		return nil, nil, nil, fmt.Errorf("variable has no values")
	}

	elem := rv.Type()
	for elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array {
		elem = elem.Elem()
	}
	integral, err := numericKind(elem.Kind())
	if err != nil {
		return nil, nil, nil, err
	}

	var shape []int
	for t := rv; t.Kind() == reflect.Slice || t.Kind() == reflect.Array; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}

	f := &flattener{shape: shape, integral: integral}
	if err := f.walk(rv, 0); err != nil {
		return nil, nil, nil, err
	}
	return f.data, f.ints, shape, nil
}

type flattener struct {
	shape    []int
	integral bool
	data     []float64
	ints     []int64
}

func (f *flattener) walk(rv reflect.Value, depth int) error {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if depth >= len(f.shape) || rv.Len() != f.shape[depth] {
			return fmt.Errorf("ragged values at depth %d", depth)
		}
		for i := 0; i < rv.Len(); i++ {
			if err := f.walk(rv.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	case reflect.Float32, reflect.Float64:
		f.data = append(f.data, rv.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f.data = append(f.data, float64(rv.Int()))
		f.ints = append(f.ints, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f.data = append(f.data, float64(rv.Uint()))
		f.ints = append(f.ints, int64(rv.Uint()))
	default:
		return fmt.Errorf("non-numeric element type %s", rv.Kind())
	}
	return nil
}

func numericKind(k reflect.Kind) (integral bool, err error) {
	switch k {
	case reflect.Float32, reflect.Float64:
		return false, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true, nil
	default:
		return false, fmt.Errorf("non-numeric element type %s", k)
	}
}

func maskRange(data []float64, lo, hi float64) {
	for i, x := range data {
		if x < lo || x > hi {
			data[i] = nan
		}
	}
}

func unpack(data []float64, scale, offset float64) {
	for i, x := range data {
		data[i] = x*scale + offset
	}
}

func maskFill(data, fills []float64) {
	for _, fill := range fills {
		for i, x := range data {
			if x == fill {
				data[i] = nan
			}
		}
	}
}
