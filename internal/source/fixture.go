package source

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sells-group/health-cli/internal/config"
	"github.com/sells-group/health-cli/internal/model"
)

var (
	fixtureCompanies = []string{
		"TechCorp", "GlobalSoft", "DataDyne", "CloudFirst", "InnovateLabs",
		"DigitalEdge", "SmartSystems", "FutureWorks", "NextGenTech", "ProActive Solutions",
		"StreamlineInc", "VelocityGroup", "PivotPoint", "ScaleUp Enterprises", "ModernStack",
		"AgileFlow", "ConnectCore", "BrightPath", "OptimalTech", "FlexiSoft",
	}
	fixtureIndustries = []string{"Technology", "Healthcare", "Finance", "Retail", "Manufacturing", "Education"}
	fixtureRegions    = []string{"North America", "Europe", "Asia Pacific", "Latin America"}
	fixtureSegments   = []string{"Enterprise", "Mid-Market", "SMB"}
	fixtureCSMs       = []string{"Sarah Johnson", "Mike Chen", "Emily Rodriguez", "David Kim", "Jessica Taylor"}

	fixtureTicketTitles = []string{
		"Login issues with SSO",
		"Performance degradation",
		"Feature request: Export functionality",
		"API rate limiting concerns",
		"Dashboard loading slowly",
		"Integration setup help needed",
		"Billing discrepancy",
		"User permission problems",
	}
	fixturePlaybookNames = []string{
		"Quarterly Business Review",
		"Executive Check-in",
		"Usage Optimization Workshop",
		"Renewal Discussion",
		"Feature Adoption Training",
		"Success Planning Session",
		"Risk Mitigation Call",
		"Expansion Opportunity Review",
	}
)

// Fixture generates a deterministic demo account population. The same
// seed always yields the same accounts, so demos and tests are
// reproducible; anomalies in the generated usage series come from
// injected drops the detector can rediscover, not from random flags.
type Fixture struct {
	seed  int64
	count int
	now   func() time.Time
}

// NewFixture creates a fixture source from config.
func NewFixture(cfg config.FixtureConfig) *Fixture {
	count := cfg.Count
	if count <= 0 {
		count = 50
	}
	return &Fixture{seed: cfg.Seed, count: count, now: time.Now}
}

// WithClock pins the fixture clock; renewal dates and series dates are
// generated relative to it.
func (f *Fixture) WithClock(now func() time.Time) *Fixture {
	f.now = now
	return f
}

// Accounts implements Source.
func (f *Fixture) Accounts(_ context.Context) ([]model.Account, error) {
	rng := rand.New(rand.NewPCG(uint64(f.seed), uint64(f.seed)))
	now := f.now()

	accounts := make([]model.Account, 0, f.count)
	for i := 0; i < f.count; i++ {
		company := fixtureCompanies[i%len(fixtureCompanies)]
		name := company
		if i >= len(fixtureCompanies) {
			name = fmt.Sprintf("%s %d", company, i/len(fixtureCompanies)+1)
		}

		a := model.Account{
			ID:               fmt.Sprintf("ACC-%04d", i+1),
			Name:             name,
			ARR:              float64(50_000 + rng.IntN(500_000)),
			Segment:          pick(rng, fixtureSegments),
			Industry:         pick(rng, fixtureIndustries),
			Region:           pick(rng, fixtureRegions),
			CSM:              pick(rng, fixtureCSMs),
			ExecutiveContact: fmt.Sprintf("exec%d@%s.com", i+1, slug(company)),
			RenewalDate:      now.AddDate(0, 0, rng.IntN(365)+1),
			NPS:              float64(rng.IntN(201) - 100),
			UsagePercent:     float64(rng.IntN(101)),
			OpenTickets:      rng.IntN(15),
			BillingHealth:    float64(rng.IntN(101)),
			UsageSeries:      f.usageSeries(rng, now),
			ActionItems:      f.playbooks(rng, i, now),
			RecentTickets:    f.tickets(rng, i, now),
		}
		accounts = append(accounts, a)
	}

	if err := model.ValidateAll(accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// usageSeries generates 31 days of usage around a stable baseline with
// occasional sharp drops for the detector to find.
func (f *Fixture) usageSeries(rng *rand.Rand, now time.Time) []model.UsageSample {
	base := 75 + rng.Float64()*20
	series := make([]model.UsageSample, 0, 31)
	for d := 30; d >= 0; d-- {
		value := base + (rng.Float64()-0.5)*10
		if rng.Float64() < 0.15 {
			// Drop to 40-70% of normal.
			value *= 0.4 + rng.Float64()*0.3
		}
		series = append(series, model.UsageSample{
			Date:  now.AddDate(0, 0, -d),
			Value: clamp01(value),
		})
	}
	return series
}

func (f *Fixture) tickets(rng *rand.Rand, accountIdx int, now time.Time) []model.SupportTicket {
	severities := []model.TicketSeverity{model.SeverityLow, model.SeverityMedium, model.SeverityHigh}
	statuses := []model.TicketStatus{model.TicketOpen, model.TicketClosed}

	n := rng.IntN(8) + 2
	tickets := make([]model.SupportTicket, 0, n)
	for i := 0; i < n; i++ {
		tickets = append(tickets, model.SupportTicket{
			ID:        fmt.Sprintf("TICK-%04d-%d", accountIdx+1, i+1),
			Title:     pick(rng, fixtureTicketTitles),
			Severity:  pick(rng, severities),
			Status:    pick(rng, statuses),
			CreatedAt: now.AddDate(0, 0, -rng.IntN(60)),
		})
	}
	return tickets
}

func (f *Fixture) playbooks(rng *rand.Rand, accountIdx int, now time.Time) []model.PlaybookItem {
	statuses := []model.PlaybookStatus{model.PlaybookSuggested, model.PlaybookActive, model.PlaybookCompleted}

	n := rng.IntN(4) + 1
	items := make([]model.PlaybookItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.PlaybookItem{
			ID:       fmt.Sprintf("PB-%04d-%d", accountIdx+1, i+1),
			Name:     pick(rng, fixturePlaybookNames),
			Status:   pick(rng, statuses),
			DueDate:  now.AddDate(0, 0, rng.IntN(30)+5),
			Priority: model.PriorityMedium,
			Origin:   model.OriginManual,
		})
	}
	return items
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == ' ' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
