package econ

import (
	"fmt"
	"strings"
)

// Ceilings for computed quantities. These are guard-rail policy constants
// against runaway model feedback, not business rules; a breach fails the
// round rather than clamping.
const (
	maxCapital       = 1e7
	maxLabor         = 1e7
	maxProductivity  = 1e3
	maxOutputScale   = 1e7
	maxNetExports    = 1e7
	maxOpenness      = 10
	maxCurrencyRatio = 100
	maxFDIRatio      = 1
	maxForeignIncome = 1e7
	maxHumanCapital  = 100
)

// Candidate bundles every quantity computed for a round before it is accepted
// as the next state, including the exogenous inputs that shaped it.
type Candidate struct {
	K        float64
	L        float64
	A        float64
	Y        float64
	X        float64
	M        float64
	NX       float64
	Openness float64
	C        float64
	I        float64
	E        float64
	TildeE   float64
	YStar    float64
	H        float64
	FDIRatio float64
}

// FieldViolation reports one quantity outside its bounds.
type FieldViolation struct {
	Field  string  `json:"field"`
	Value  float64 `json:"value"`
	Reason string  `json:"reason"`
}

// ValidationError collects every violated field of a candidate. The round
// that produced it is never committed.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s = %g (%s)", v.Field, v.Value, v.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate bounds-checks every field of a candidate independently and
// reports all violations together. A nil return means the candidate may
// become the next state.
func Validate(c Candidate) error {
	var violations []FieldViolation

	check := func(field string, value float64, ok bool, reason string) {
		if !ok {
			violations = append(violations, FieldViolation{Field: field, Value: value, Reason: reason})
		}
	}

	check("k", c.K, c.K > 0 && c.K < maxCapital, "must be positive and below the capital ceiling")
	check("l", c.L, c.L > 0 && c.L < maxLabor, "must be positive and below the population ceiling")
	check("a", c.A, c.A > 0 && c.A < maxProductivity, "must be positive and below the productivity ceiling")
	check("y", c.Y, c.Y >= 0 && c.Y < maxOutputScale, "must be non-negative and below the output ceiling")
	check("x", c.X, c.X >= 0 && c.X < maxOutputScale, "must be non-negative and below the output ceiling")
	check("m", c.M, c.M >= 0 && c.M < maxOutputScale, "must be non-negative and below the output ceiling")
	check("nx", c.NX, c.NX > -maxNetExports && c.NX < maxNetExports, "must be within the net-exports band")
	check("openness", c.Openness, c.Openness >= 0 && c.Openness < maxOpenness, "must be non-negative and below the trade-ratio ceiling")
	check("c", c.C, c.C >= 0 && c.C < maxOutputScale, "must be non-negative and below the output ceiling")
	check("i", c.I, c.I >= 0 && c.I < maxOutputScale, "must be non-negative and below the output ceiling")
	check("e", c.E, c.E > 0 && c.E < maxCurrencyRatio, "must be positive and below the currency-ratio ceiling")
	check("tilde_e", c.TildeE, c.TildeE > 0 && c.TildeE < maxCurrencyRatio, "must be positive and below the currency-ratio ceiling")
	check("y_star", c.YStar, c.YStar > 0 && c.YStar < maxForeignIncome, "must be positive and below the foreign-income ceiling")
	check("h", c.H, c.H > 0 && c.H < maxHumanCapital, "must be positive and below the human-capital ceiling")
	check("fdi_ratio", c.FDIRatio, c.FDIRatio >= 0 && c.FDIRatio < maxFDIRatio, "must be non-negative and below the FDI ceiling")

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
