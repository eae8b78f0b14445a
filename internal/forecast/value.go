package forecast

import (
	"encoding/json"
	"math"
)

// Value is a single element of a fitted, predicted, or scored sequence.
// Positions with insufficient history carry Valid=false and are excluded
// from metric comparisons instead of leaking into arithmetic as NaN.
type Value struct {
	Float64 float64
	Valid   bool
}

// Defined returns a valid Value holding f.
func Defined(f float64) Value {
	return Value{Float64: f, Valid: true}
}

// Undefined returns the marker for positions with no computable value.
func Undefined() Value {
	return Value{}
}

// Finite reports whether v is defined and neither NaN nor infinite.
func (v Value) Finite() bool {
	return v.Valid && isFinite(v.Float64)
}

// MarshalJSON renders undefined or non-finite values as null so chart
// consumers can break the line at those positions.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON accepts null as undefined.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
