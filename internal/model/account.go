// Package model defines the account data model shared by the scoring
// engine, stores, sources, and the dashboard API.
package model

import "time"

// RiskTier classifies an account's renewal risk.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// PlaybookStatus represents the lifecycle state of a playbook item.
type PlaybookStatus string

const (
	PlaybookSuggested PlaybookStatus = "suggested"
	PlaybookActive    PlaybookStatus = "active"
	PlaybookCompleted PlaybookStatus = "completed"
)

// StatusRank returns the sort rank of a playbook status. Suggested items
// sort first so unaddressed work surfaces at the top of a merged list.
func (s PlaybookStatus) StatusRank() int {
	switch s {
	case PlaybookSuggested:
		return 0
	case PlaybookActive:
		return 1
	case PlaybookCompleted:
		return 2
	}
	return 3
}

// Priority represents the urgency of a playbook item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// PlaybookOrigin records how a playbook item came to exist.
type PlaybookOrigin string

const (
	OriginManual PlaybookOrigin = "manual"
	OriginEngine PlaybookOrigin = "engine"
)

// TicketSeverity classifies a support ticket's impact.
type TicketSeverity string

const (
	SeverityLow    TicketSeverity = "low"
	SeverityMedium TicketSeverity = "medium"
	SeverityHigh   TicketSeverity = "high"
)

// TicketStatus represents whether a support ticket is still open.
type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

// UsageSample is one day of product usage for an account. Value is a
// percentage in [0,100]. Anomaly is set by the anomaly detector and is
// the only field that changes after a sample is produced.
type UsageSample struct {
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
	Anomaly bool      `json:"anomaly,omitempty"`
}

// SupportTicket is a recent support case attached to an account.
type SupportTicket struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Severity  TicketSeverity `json:"severity"`
	Status    TicketStatus   `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// PlaybookItem is a retention or engagement task for an account, either
// created manually by a CSM or synthesized by the recommender.
type PlaybookItem struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Status   PlaybookStatus `json:"status"`
	DueDate  time.Time      `json:"due_date"`
	Priority Priority       `json:"priority"`
	Origin   PlaybookOrigin `json:"origin"`
}

// Account is a customer account with raw health signals and the derived
// fields the engine computes from them. The engine only ever writes
// HealthScore, RiskTier, and the Anomaly flags on UsageSeries; raw signal
// inputs are owned by the ingestion path.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Commercial attributes.
	ARR              float64   `json:"arr"`
	Segment          string    `json:"segment"`
	Industry         string    `json:"industry"`
	Region           string    `json:"region"`
	CSM              string    `json:"csm"`
	ExecutiveContact string    `json:"executive_contact,omitempty"`
	RenewalDate      time.Time `json:"renewal_date"`

	// Raw health signals.
	NPS           float64 `json:"nps"`            // [-100,100]
	UsagePercent  float64 `json:"usage_percent"`  // [0,100]
	OpenTickets   int     `json:"open_tickets"`   // >= 0
	BillingHealth float64 `json:"billing_health"` // [0,100]

	// Derived by the engine.
	HealthScore float64  `json:"health_score"`
	RiskTier    RiskTier `json:"risk_tier,omitempty"`

	// Owned collections.
	UsageSeries   []UsageSample   `json:"usage_series,omitempty"`
	ActionItems   []PlaybookItem  `json:"action_items,omitempty"`
	RecentTickets []SupportTicket `json:"recent_tickets,omitempty"`
}

// Clone returns a deep copy of the account. Snapshots use this so derived
// fields can be written without mutating the caller's records.
func (a Account) Clone() Account {
	out := a
	if a.UsageSeries != nil {
		out.UsageSeries = make([]UsageSample, len(a.UsageSeries))
		copy(out.UsageSeries, a.UsageSeries)
	}
	if a.ActionItems != nil {
		out.ActionItems = make([]PlaybookItem, len(a.ActionItems))
		copy(out.ActionItems, a.ActionItems)
	}
	if a.RecentTickets != nil {
		out.RecentTickets = make([]SupportTicket, len(a.RecentTickets))
		copy(out.RecentTickets, a.RecentTickets)
	}
	return out
}

// KPISummary is a portfolio-wide rollup over a scored account collection.
// It is recomputed wholesale from the current collection, never patched.
type KPISummary struct {
	HealthyFraction     float64   `json:"healthy_fraction"`
	AtRiskFraction      float64   `json:"at_risk_fraction"`
	TotalARRAtRisk      float64   `json:"total_arr_at_risk"`
	AverageNPS          float64   `json:"average_nps"`
	TotalAccounts       int       `json:"total_accounts"`
	RenewalsThisQuarter int       `json:"renewals_this_quarter"`
	ComputedAt          time.Time `json:"computed_at"`
}
