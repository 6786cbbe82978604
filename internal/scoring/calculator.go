package scoring

import (
	"math"

	"github.com/sells-group/health-cli/internal/config"
)

// Component names a factor of the composite score. The dashboard's
// health-factor radar renders these four sub-scores.
type Component string

const (
	ComponentNPS     Component = "nps"
	ComponentUsage   Component = "usage"
	ComponentTickets Component = "tickets"
	ComponentBilling Component = "billing"
)

// Breakdown holds the composite health score together with its normalized
// sub-scores, each on a 0-100 scale.
type Breakdown struct {
	Score      float64               `json:"score"`
	Components map[Component]float64 `json:"components"`
}

// Calculator computes composite health scores from raw account signals.
// It is a pure, total function over its inputs: any real-valued input
// produces a score clamped to [0,100]. Domain validation of raw signals
// happens at ingestion, not here.
type Calculator struct {
	cfg config.ScoringConfig
}

// NewCalculator creates a Calculator with the given weights.
func NewCalculator(cfg config.ScoringConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Score computes the weighted composite health score.
func (c *Calculator) Score(nps, usage float64, openTickets int, billing float64) float64 {
	return c.ScoreBreakdown(nps, usage, openTickets, billing).Score
}

// ScoreBreakdown computes the composite score and its per-factor
// sub-scores.
func (c *Calculator) ScoreBreakdown(nps, usage float64, openTickets int, billing float64) Breakdown {
	components := map[Component]float64{
		ComponentNPS:     scoreNPS(nps),
		ComponentUsage:   usage,
		ComponentTickets: scoreTickets(openTickets),
		ComponentBilling: billing,
	}

	weights := map[Component]float64{
		ComponentNPS:     c.cfg.NPSWeight,
		ComponentUsage:   c.cfg.UsageWeight,
		ComponentTickets: c.cfg.TicketWeight,
		ComponentBilling: c.cfg.BillingWeight,
	}

	var total float64
	for k, component := range components {
		total += component * weights[k]
	}

	// Normalize in case configured weights do not sum to exactly 1.0.
	if sum := WeightSum(c.cfg); sum > 0 {
		total /= sum
	}

	return Breakdown{
		Score:      clamp(total, 0, 100),
		Components: components,
	}
}

// scoreNPS normalizes NPS from [-100,100] to [0,100].
func scoreNPS(nps float64) float64 {
	return (nps + 100) / 2
}

// scoreTickets penalizes open ticket volume linearly, 10 points per
// ticket, flooring at zero so 10+ open tickets drive the sub-score to 0.
func scoreTickets(openTickets int) float64 {
	return math.Max(0, 100-10*float64(openTickets))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
