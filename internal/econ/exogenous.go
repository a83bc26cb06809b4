package econ

// ExogenousRow holds the externally given values for one round: the
// counterfactual exchange rate, a foreign-income index, the human-capital
// index, and inbound FDI as a share of output. Rows are read-only.
type ExogenousRow struct {
	TildeE   float64 `json:"tilde_e"`
	YStar    float64 `json:"y_star"`
	H        float64 `json:"h"`
	FDIRatio float64 `json:"fdi_ratio"`
}

// Table is the exogenous data table indexed by round number.
type Table []ExogenousRow

// Row returns the row for the given round index. Indices past the end clamp
// to the last row: late rounds reuse the final row indefinitely instead of
// erroring. The second return is false only when the table is empty.
func (t Table) Row(i int) (ExogenousRow, bool) {
	if len(t) == 0 {
		return ExogenousRow{}, false
	}
	if i < 0 {
		i = 0
	}
	if i >= len(t) {
		i = len(t) - 1
	}
	return t[i], true
}

// Baseline carries the base-period anchors for the trade equations: the
// exchange rate and foreign income of round 0 evaluated at the neutral
// policy multiplier.
type Baseline struct {
	E     float64
	YStar float64
}

// NewBaseline derives the trade baseline from the table's first row. An
// empty table is a fatal misconfiguration and reported as such by callers.
func NewBaseline(t Table) (Baseline, bool) {
	row, ok := t.Row(0)
	if !ok {
		return Baseline{}, false
	}
	return Baseline{
		E:     ExchangePolicyNeutral * row.TildeE,
		YStar: row.YStar,
	}, true
}

// DefaultTable returns the built-in exogenous series, one row per five-year
// round from 1980 through 2035.
func DefaultTable() Table {
	return Table{
		{TildeE: 1.50, YStar: 100.0, H: 1.00, FDIRatio: 0.001},
		{TildeE: 1.52, YStar: 106.0, H: 1.05, FDIRatio: 0.005},
		{TildeE: 1.53, YStar: 112.4, H: 1.12, FDIRatio: 0.010},
		{TildeE: 1.55, YStar: 119.1, H: 1.20, FDIRatio: 0.045},
		{TildeE: 1.56, YStar: 126.2, H: 1.30, FDIRatio: 0.040},
		{TildeE: 1.58, YStar: 133.8, H: 1.42, FDIRatio: 0.035},
		{TildeE: 1.59, YStar: 141.9, H: 1.55, FDIRatio: 0.040},
		{TildeE: 1.61, YStar: 150.4, H: 1.68, FDIRatio: 0.030},
		{TildeE: 1.62, YStar: 159.4, H: 1.80, FDIRatio: 0.020},
		{TildeE: 1.64, YStar: 168.9, H: 1.90, FDIRatio: 0.015},
		{TildeE: 1.66, YStar: 179.1, H: 1.98, FDIRatio: 0.012},
		{TildeE: 1.67, YStar: 189.8, H: 2.05, FDIRatio: 0.010},
	}
}
