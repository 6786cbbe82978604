// Package scoring implements the composite health-score calculator and the
// renewal risk classifier.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/health-cli/internal/config"
)

// DefaultConfig returns a config.ScoringConfig with the standard weights.
// Weights sum to 1.0.
func DefaultConfig() config.ScoringConfig {
	return config.ScoringConfig{
		NPSWeight:     0.30,
		UsageWeight:   0.30,
		TicketWeight:  0.20,
		BillingWeight: 0.20,
		Workers:       8,
	}
}

// WeightSum returns the sum of all component weights.
func WeightSum(c config.ScoringConfig) float64 {
	return c.NPSWeight + c.UsageWeight + c.TicketWeight + c.BillingWeight
}

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	weights := map[string]float64{
		"nps_weight":     c.NPSWeight,
		"usage_weight":   c.UsageWeight,
		"ticket_weight":  c.TicketWeight,
		"billing_weight": c.BillingWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	sum := WeightSum(c)
	if sum <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}

	// Weights should be close to 1.0 (allow tolerance for floating-point).
	if math.Abs(sum-1.0) > 0.01 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.3f", sum))
	}

	if c.Workers < 0 {
		errs = append(errs, "workers must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
