package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ValidationError reports a raw signal field outside its documented domain.
// Ingestion paths reject such records instead of silently clamping, so
// data-quality problems surface at the boundary rather than inside the
// calculator.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("account validation: %s: %s", e.Field, e.Reason)
}

// Validate checks that required fields are present and that every raw
// signal input is within its documented domain. It returns the first
// violation found as a *ValidationError.
func Validate(a Account) error {
	if strings.TrimSpace(a.ID) == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if a.ARR < 0 {
		return &ValidationError{Field: "arr", Reason: fmt.Sprintf("must be >= 0, got %.2f", a.ARR)}
	}
	if a.RenewalDate.IsZero() {
		return &ValidationError{Field: "renewal_date", Reason: "required"}
	}
	if a.NPS < -100 || a.NPS > 100 {
		return &ValidationError{Field: "nps", Reason: fmt.Sprintf("must be in [-100,100], got %.1f", a.NPS)}
	}
	if a.UsagePercent < 0 || a.UsagePercent > 100 {
		return &ValidationError{Field: "usage_percent", Reason: fmt.Sprintf("must be in [0,100], got %.1f", a.UsagePercent)}
	}
	if a.OpenTickets < 0 {
		return &ValidationError{Field: "open_tickets", Reason: fmt.Sprintf("must be >= 0, got %d", a.OpenTickets)}
	}
	if a.BillingHealth < 0 || a.BillingHealth > 100 {
		return &ValidationError{Field: "billing_health", Reason: fmt.Sprintf("must be in [0,100], got %.1f", a.BillingHealth)}
	}
	for i, s := range a.UsageSeries {
		if s.Value < 0 || s.Value > 100 {
			return &ValidationError{
				Field:  fmt.Sprintf("usage_series[%d].value", i),
				Reason: fmt.Sprintf("must be in [0,100], got %.1f", s.Value),
			}
		}
	}
	return nil
}

// ValidateAll validates a collection and returns the offending account ID
// alongside the field error. Nothing is partially applied: the first
// invalid record fails the whole batch.
func ValidateAll(accounts []Account) error {
	for _, a := range accounts {
		if err := Validate(a); err != nil {
			return eris.Wrapf(err, "account %q", a.ID)
		}
	}
	return nil
}
