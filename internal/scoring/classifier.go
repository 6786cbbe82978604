package scoring

import (
	"math"
	"time"

	"github.com/sells-group/health-cli/internal/model"
)

// DaysUntilRenewal returns the number of days from now until the renewal
// date, as the ceiling of the remaining duration. A renewal later today
// counts as 1; past-due renewals are negative.
func DaysUntilRenewal(renewalDate, now time.Time) int {
	return int(math.Ceil(renewalDate.Sub(now).Hours() / 24))
}

// Classify maps a health score and renewal proximity to a risk tier.
// Checks run in strict order so ambiguous cases resolve to the worse
// tier: a high score with an imminent renewal is still high risk.
func Classify(healthScore float64, daysUntilRenewal int) model.RiskTier {
	switch {
	case healthScore >= 80 && daysUntilRenewal > 90:
		return model.RiskLow
	case healthScore >= 60 && daysUntilRenewal > 30:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// ClassifyAccount derives the risk tier for an account from its current
// health score and renewal date.
func ClassifyAccount(a model.Account, now time.Time) model.RiskTier {
	return Classify(a.HealthScore, DaysUntilRenewal(a.RenewalDate, now))
}
