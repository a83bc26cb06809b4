package econ

// Exchange-rate policy multipliers a player may choose. The nominal rate for
// a round is the chosen multiplier applied to the round's counterfactual rate.
// A multiplier above one weakens the currency (more domestic units per unit
// of foreign currency), favoring exports.
const (
	ExchangePolicyAppreciate = 0.8
	ExchangePolicyNeutral    = 1.0
	ExchangePolicyDepreciate = 1.2
)

// Params holds the structural constants of the growth model. The values are
// configuration data, not algorithm: every function in this package takes the
// set it should use.
type Params struct {
	Alpha float64 // capital share in production
	Delta float64 // capital depreciation per round
	G     float64 // baseline TFP growth per round
	N     float64 // labor-force growth per round
	Theta float64 // openness feedback into TFP growth
	Phi   float64 // FDI feedback into TFP growth

	EpsX float64 // export exchange-rate elasticity
	MuX  float64 // export foreign-income elasticity
	EpsM float64 // import exchange-rate elasticity
	MuM  float64 // import domestic-income elasticity

	X0 float64 // base-year exports
	M0 float64 // base-year imports
	Y0 float64 // base-year output

	K0 float64 // initial capital stock
	L0 float64 // initial labor force, millions
	A0 float64 // initial total-factor productivity

	BaseYear          int     // calendar year of the initial state
	YearStep          int     // years advanced per round
	InitialSavingRate float64 // saving rate attributed to the initial state
}

// DefaultParams returns the model configuration used by the course.
func DefaultParams() Params {
	return Params{
		Alpha: 0.5,
		Delta: 0.06,
		G:     0.01,
		N:     0.02,
		Theta: 0.01,
		Phi:   0.2,

		EpsX: 1.0,
		MuX:  0.7,
		EpsM: 1.2,
		MuM:  1.2,

		X0: 300,
		M0: 350,
		Y0: 1414.2135623730951,

		K0: 2000,
		L0: 1000,
		A0: 1.0,

		BaseYear:          1980,
		YearStep:          5,
		InitialSavingRate: 0.2,
	}
}
