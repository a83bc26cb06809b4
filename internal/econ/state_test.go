package econ

import (
	"errors"
	"testing"
)

func TestControlsValidateAcceptsDomain(t *testing.T) {
	for _, policy := range []float64{ExchangePolicyAppreciate, ExchangePolicyNeutral, ExchangePolicyDepreciate} {
		c := Controls{SavingRate: 0.3, ExchangePolicy: policy}
		if err := c.Validate(); err != nil {
			t.Fatalf("validate %v: %v", policy, err)
		}
	}
}

func TestControlsValidateRejectsSavingRateBoundaries(t *testing.T) {
	// The saving-rate domain is the open interval (0,1): both endpoints are
	// rejected here, before the economic validator ever runs.
	for _, rate := range []float64{0, 1, -0.1, 1.5} {
		c := Controls{SavingRate: rate, ExchangePolicy: ExchangePolicyNeutral}
		err := c.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("rate %v: expected *ValidationError, got %v", rate, err)
		}
		if verr.Violations[0].Field != "saving_rate" {
			t.Fatalf("rate %v: field = %q, want saving_rate", rate, verr.Violations[0].Field)
		}
	}
}

func TestControlsValidateRejectsUnknownPolicy(t *testing.T) {
	c := Controls{SavingRate: 0.3, ExchangePolicy: 1.1}
	err := c.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Violations[0].Field != "exchange_policy" {
		t.Fatalf("field = %q, want exchange_policy", verr.Violations[0].Field)
	}
}

func TestControlsValidateCollectsBothViolations(t *testing.T) {
	c := Controls{SavingRate: 0, ExchangePolicy: 2}
	err := c.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(verr.Violations))
	}
}
