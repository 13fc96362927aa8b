package core

import (
	"encoding/json"
	"math"
)

// Value is a numeric result that may be undefined. An undefined Value is how the
// engine says "no data" (mean of an empty bucket, correlation with a constant
// column); it is never conflated with a computed zero.
type Value struct {
	Float float64
	Valid bool
}

// Some wraps a defined number. NaN and infinities are treated as undefined.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// None is the undefined value
func None() Value {
	return Value{}
}

// Or returns the number, or fallback when undefined
func (v Value) Or(fallback float64) float64 {
	if !v.Valid {
		return fallback
	}
	return v.Float
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}
