package model

import (
	"errors"
	"fmt"
	"math"
)

// GlucoseReading is a blood glucose concentration in mg/dL.
// The protocol bands only make clinical sense up to roughly 600 mg/dL,
// but no upper bound is enforced.
type GlucoseReading float64

// InfusionRate is a continuous insulin delivery rate in U/h.
// Values leaving the engine are rounded to one decimal for pump compatibility.
type InfusionRate float64

// Units is an insulin amount in U (bolus).
type Units float64

// ErrInvalidInput is the sentinel wrapped by every input rejection.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError identifies the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// MissingField reports a required field absent for the selected mode.
func MissingField(field string) error {
	return &InvalidInputError{Field: field, Reason: "is required"}
}

// CheckNonNegative rejects negative and non-finite values.
func CheckNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &InvalidInputError{Field: field, Reason: "must be a finite number"}
	}
	if v < 0 {
		return &InvalidInputError{Field: field, Reason: fmt.Sprintf("must be >= 0, got %g", v)}
	}
	return nil
}

func (g GlucoseReading) Validate(field string) error {
	return CheckNonNegative(field, float64(g))
}

func (r InfusionRate) Validate(field string) error {
	return CheckNonNegative(field, float64(r))
}
