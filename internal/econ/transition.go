package econ

import "math"

// Next computes the state that follows prev under the given controls and
// exogenous row. It is pure and deterministic: identical inputs yield
// bit-identical states.
//
// The order of the steps matters because later quantities depend on earlier
// ones within the same round: nominal exchange rate, output, exports,
// imports, net exports and openness, consumption and investment, then the
// productivity, capital and labor updates. The assembled candidate is
// bounds-checked before a state is produced; on a validation failure the
// round did not happen and the error reports every violated field.
func Next(prev EconomicState, controls Controls, exog ExogenousRow, base Baseline, p Params) (EconomicState, error) {
	e := controls.ExchangePolicy * exog.TildeE

	y := prev.A * math.Pow(prev.K, p.Alpha) * math.Pow(prev.L*exog.H, 1-p.Alpha)

	x := p.X0 * math.Pow(e/base.E, p.EpsX) * math.Pow(exog.YStar/base.YStar, p.MuX)
	m := p.M0 * math.Pow(e/base.E, -p.EpsM) * math.Pow(y/p.Y0, p.MuM)

	nx := x - m
	openness := (x + m) / y

	c := (1 - controls.SavingRate) * y
	i := controls.SavingRate*y - nx

	nextA := prev.A * (1 + p.G + p.Theta*openness + p.Phi*exog.FDIRatio)
	nextK := (1-p.Delta)*prev.K + i
	nextL := (1 + p.N) * prev.L

	if err := Validate(Candidate{
		K:        nextK,
		L:        nextL,
		A:        nextA,
		Y:        y,
		X:        x,
		M:        m,
		NX:       nx,
		Openness: openness,
		C:        c,
		I:        i,
		E:        e,
		TildeE:   exog.TildeE,
		YStar:    exog.YStar,
		H:        exog.H,
		FDIRatio: exog.FDIRatio,
	}); err != nil {
		return EconomicState{}, err
	}

	return EconomicState{
		Year:           prev.Year + p.YearStep,
		K:              nextK,
		L:              nextL,
		A:              nextA,
		Y:              y,
		X:              x,
		M:              m,
		NX:             nx,
		Openness:       openness,
		C:              c,
		I:              i,
		E:              e,
		TildeE:         exog.TildeE,
		SavingRate:     controls.SavingRate,
		ExchangePolicy: controls.ExchangePolicy,
	}, nil
}

// InitialState derives the fixed first history element from the initial
// stocks in p, evaluated against the table's first row at the neutral
// exchange multiplier and p.InitialSavingRate. The second return is false
// when the table is empty.
func InitialState(p Params, t Table) (EconomicState, bool) {
	row, ok := t.Row(0)
	if !ok {
		return EconomicState{}, false
	}
	base, ok := NewBaseline(t)
	if !ok {
		return EconomicState{}, false
	}

	e := ExchangePolicyNeutral * row.TildeE
	y := p.A0 * math.Pow(p.K0, p.Alpha) * math.Pow(p.L0*row.H, 1-p.Alpha)
	x := p.X0 * math.Pow(e/base.E, p.EpsX) * math.Pow(row.YStar/base.YStar, p.MuX)
	m := p.M0 * math.Pow(e/base.E, -p.EpsM) * math.Pow(y/p.Y0, p.MuM)
	nx := x - m

	return EconomicState{
		Year:           p.BaseYear,
		K:              p.K0,
		L:              p.L0,
		A:              p.A0,
		Y:              y,
		X:              x,
		M:              m,
		NX:             nx,
		Openness:       (x + m) / y,
		C:              (1 - p.InitialSavingRate) * y,
		I:              p.InitialSavingRate*y - nx,
		E:              e,
		TildeE:         row.TildeE,
		SavingRate:     p.InitialSavingRate,
		ExchangePolicy: ExchangePolicyNeutral,
	}, true
}
