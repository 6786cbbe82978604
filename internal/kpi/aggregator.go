// Package kpi reduces a scored account collection into portfolio-wide
// summary metrics.
package kpi

import (
	"time"

	"github.com/sells-group/health-cli/internal/model"
)

// Thresholds used by the portfolio rollup. An account is healthy at a
// score of 75 or above and at risk below 60; accounts between contribute
// to neither fraction.
const (
	HealthyThreshold = 75.0
	AtRiskThreshold  = 60.0
)

// QuarterEnd returns the last day of the calendar quarter containing t,
// at end of day in t's location.
func QuarterEnd(t time.Time) time.Time {
	quarterStartMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	// Day 0 of the month after the quarter is the quarter's last day.
	return time.Date(t.Year(), quarterStartMonth+3, 0, 23, 59, 59, 0, t.Location())
}

// Partial is a mergeable intermediate aggregate. Aggregation is a
// commutative, associative reduction, so a portfolio can be split into
// chunks, reduced in parallel, and merged. Bit-identical float summation
// order across worker counts is not guaranteed.
type Partial struct {
	Total      int
	Healthy    int
	AtRisk     int
	ARRAtRisk  float64
	NPSSum     float64
	Renewals   int
	quarterEnd time.Time
}

// NewPartial creates an empty partial aggregate; renewals are counted
// against the calendar quarter containing now.
func NewPartial(now time.Time) *Partial {
	return &Partial{quarterEnd: QuarterEnd(now)}
}

// Add folds one scored account into the partial.
func (p *Partial) Add(a model.Account) {
	p.Total++
	if a.HealthScore >= HealthyThreshold {
		p.Healthy++
	}
	if a.HealthScore < AtRiskThreshold {
		p.AtRisk++
		p.ARRAtRisk += a.ARR
	}
	p.NPSSum += a.NPS
	if !a.RenewalDate.After(p.quarterEnd) {
		p.Renewals++
	}
}

// Merge folds another partial into this one.
func (p *Partial) Merge(other *Partial) {
	p.Total += other.Total
	p.Healthy += other.Healthy
	p.AtRisk += other.AtRisk
	p.ARRAtRisk += other.ARRAtRisk
	p.NPSSum += other.NPSSum
	p.Renewals += other.Renewals
}

// Summary finalizes the partial into a KPISummary. An empty collection
// yields zero for every fractional and average metric; division by zero
// is a defined boundary case here, not an error.
func (p *Partial) Summary(now time.Time) model.KPISummary {
	s := model.KPISummary{
		TotalAccounts:       p.Total,
		TotalARRAtRisk:      p.ARRAtRisk,
		RenewalsThisQuarter: p.Renewals,
		ComputedAt:          now,
	}
	if p.Total > 0 {
		s.HealthyFraction = float64(p.Healthy) / float64(p.Total)
		s.AtRiskFraction = float64(p.AtRisk) / float64(p.Total)
		s.AverageNPS = p.NPSSum / float64(p.Total)
	}
	return s
}

// Aggregate reduces a scored account collection into a KPISummary.
func Aggregate(accounts []model.Account, now time.Time) model.KPISummary {
	p := NewPartial(now)
	for _, a := range accounts {
		p.Add(a)
	}
	return p.Summary(now)
}
