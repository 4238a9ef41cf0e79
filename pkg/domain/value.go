// Package domain defines the canonical participant schema, optional value
// types, and estimation result primitives used by surveycore.
package domain

import (
	"encoding/json"
	"math"
)

// Value is an optional numeric measurement. Survey components are routinely
// absent for whole eras, so every canonical field is carried as a Value and
// missingness propagates explicitly instead of riding on NaN sentinels.
type Value struct {
	Float float64
	Valid bool
}

// Some returns a present Value.
func Some(f float64) Value { return Value{Float: f, Valid: true} }

// Missing returns an absent Value.
func Missing() Value { return Value{} }

// Equals reports whether the value is present and equal to f.
func (v Value) Equals(f float64) bool { return v.Valid && v.Float == f }

// AtLeast reports whether the value is present and >= f. A missing value
// never satisfies a threshold.
func (v Value) AtLeast(f float64) bool { return v.Valid && v.Float >= f }

// MarshalJSON encodes missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON decodes null (or NaN-free numeric) payloads.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if math.IsNaN(f) {
		*v = Value{}
		return nil
	}
	*v = Some(f)
	return nil
}

// MeanValue averages the present values, returning missing when none are.
func MeanValue(values ...Value) Value {
	sum, n := 0.0, 0
	for _, v := range values {
		if v.Valid {
			sum += v.Float
			n++
		}
	}
	if n == 0 {
		return Missing()
	}
	return Some(sum / float64(n))
}

// TriState is the explicit three-valued outcome used for the CHD composite.
// It exists so that "unknown" can never be mistaken for a numeric zero in
// downstream arithmetic.
type TriState int

// Composite outcome states.
const (
	// Unknown means the indicators were insufficient to classify the record.
	Unknown TriState = iota
	// Positive means at least one indicator was an explicit yes.
	Positive
	// Negative means every indicator was present and an explicit no.
	Negative
)

// String returns the lower-case state name.
func (t TriState) String() string {
	switch t {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "unknown"
	}
}

// Value maps Positive to 1, Negative to 0, and Unknown to missing, which is
// the encoding the estimator consumes.
func (t TriState) Value() Value {
	switch t {
	case Positive:
		return Some(1)
	case Negative:
		return Some(0)
	default:
		return Missing()
	}
}

// SmokingStatus classifies lifetime and current smoking questionnaire answers.
type SmokingStatus int

// Smoking classifications, precedence-ordered: a lifetime "no" always wins.
const (
	SmokingUnknown SmokingStatus = iota
	SmokingNever
	SmokingCurrent
	SmokingFormer
)

// String returns the lower-case classification name.
func (s SmokingStatus) String() string {
	switch s {
	case SmokingNever:
		return "never"
	case SmokingCurrent:
		return "current"
	case SmokingFormer:
		return "former"
	default:
		return "unknown"
	}
}
