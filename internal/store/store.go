// Package store persists accounts and KPI snapshot history for the
// surrounding tool. The engine itself never reads or writes storage;
// commands load accounts here, hand them to the engine, and save derived
// fields back.
package store

import (
	"context"

	"github.com/sells-group/health-cli/internal/model"
)

// AccountFilter specifies criteria for listing accounts.
type AccountFilter struct {
	Segment   string         `json:"segment,omitempty"`
	RiskTier  model.RiskTier `json:"risk_tier,omitempty"`
	MaxHealth float64        `json:"max_health,omitempty"` // >0: only accounts scored strictly below
	Limit     int            `json:"limit,omitempty"`
}

// Store defines the persistence interface.
type Store interface {
	// Accounts
	UpsertAccounts(ctx context.Context, accounts []model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context, filter AccountFilter) ([]model.Account, error)
	SaveDerived(ctx context.Context, accounts []model.Account) error
	ReplaceActionItems(ctx context.Context, accountID string, items []model.PlaybookItem) error

	// KPI snapshot history
	SaveKPISnapshot(ctx context.Context, summary model.KPISummary) (string, error)
	ListKPISnapshots(ctx context.Context, limit int) ([]model.KPISummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
