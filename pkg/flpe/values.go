package flpe

import (
	"encoding/json"
	"math"
)

// Values is a parameter value: a scalar is a one-element slice.
type Values []float64

// Scalar returns a one-element Values.
func Scalar(x float64) Values {
	return Values{x}
}

// NaN returns a one-element Values holding NaN.
func NaN() Values {
	return Values{math.NaN()}
}

// Sentinel returns a one-element Values holding NonRunSentinel.
func Sentinel() Values {
	return Values{NonRunSentinel}
}

// IsSentinel reports whether every element equals NonRunSentinel.
func (v Values) IsSentinel() bool {
	if len(v) == 0 {
		return false
	}
	for _, x := range v {
		if x != NonRunSentinel {
			return false
		}
	}
	return true
}

// AllNaN reports whether every element is NaN. Empty values are all NaN.
func (v Values) AllNaN() bool {
	for _, x := range v {
		if !math.IsNaN(x) {
			return false
		}
	}
	return true
}

// First returns the first element, or NaN when empty.
func (v Values) First() float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	return v[0]
}

// MarshalJSON encodes NaN and infinities as null, which JSON cannot represent.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	out := make([]*float64, len(v))
	for i := range v {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			continue
		}
		out[i] = &v[i]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes null elements back to NaN.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*v = nil
		return nil
	}
	out := make(Values, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p
	}
	*v = out
	return nil
}

// Float is a scalar that encodes NaN and infinities as JSON null.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	x := float64(f)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(x)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	var p *float64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p == nil {
		*f = Float(math.NaN())
		return nil
	}
	*f = Float(*p)
	return nil
}

// IsNaN reports whether f is NaN.
func (f Float) IsNaN() bool {
	return math.IsNaN(float64(f))
}
