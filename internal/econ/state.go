package econ

// EconomicState is one round's outcome. States are produced only by
// InitialState and Next, are immutable once produced, and are appended to a
// session's history in order.
//
// K, L and A are end-of-round stocks; Y and the trade and expenditure fields
// are the flows of the round that produced them.
type EconomicState struct {
	Year           int     `json:"year"`
	K              float64 `json:"k"`
	L              float64 `json:"l"`
	A              float64 `json:"a"`
	Y              float64 `json:"y"`
	X              float64 `json:"x"`
	M              float64 `json:"m"`
	NX             float64 `json:"nx"`
	Openness       float64 `json:"openness"`
	C              float64 `json:"c"`
	I              float64 `json:"i"`
	E              float64 `json:"e"`
	TildeE         float64 `json:"tilde_e"`
	SavingRate     float64 `json:"saving_rate"`
	ExchangePolicy float64 `json:"exchange_policy"`
}

// Controls are the two policy levers a player submits for one round.
type Controls struct {
	SavingRate     float64 `json:"saving_rate"`
	ExchangePolicy float64 `json:"exchange_policy"`
}

// Validate checks that the controls are inside the playable domain: the
// saving rate on the open interval (0,1) and the exchange policy one of the
// three defined multipliers. The economic validator never sees out-of-domain
// controls.
func (c Controls) Validate() error {
	var violations []FieldViolation
	if c.SavingRate <= 0 || c.SavingRate >= 1 {
		violations = append(violations, FieldViolation{
			Field:  "saving_rate",
			Value:  c.SavingRate,
			Reason: "must be strictly between 0 and 1",
		})
	}
	switch c.ExchangePolicy {
	case ExchangePolicyAppreciate, ExchangePolicyNeutral, ExchangePolicyDepreciate:
	default:
		violations = append(violations, FieldViolation{
			Field:  "exchange_policy",
			Value:  c.ExchangePolicy,
			Reason: "must be one of 0.8, 1.0, 1.2",
		})
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
