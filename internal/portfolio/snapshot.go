package portfolio

import (
	"sort"
	"strings"
	"time"

	"github.com/sells-group/health-cli/internal/kpi"
	"github.com/sells-group/health-cli/internal/model"
)

// TopAtRiskLimit caps the at-risk dashboard view to the five largest
// matches by ARR.
const TopAtRiskLimit = 5

// Snapshot is an immutable view over a scored account collection. All
// query methods return copies; derived views never alias snapshot state.
type Snapshot struct {
	accounts []model.Account
	takenAt  time.Time
}

func newSnapshot(accounts []model.Account, takenAt time.Time) *Snapshot {
	// Keep the canonical order ARR-descending, name-ascending on ties,
	// matching the dashboard leaderboard.
	sorted := make([]model.Account, len(accounts))
	copy(sorted, accounts)
	sortByARR(sorted)
	return &Snapshot{accounts: sorted, takenAt: takenAt}
}

// TakenAt returns when the snapshot was computed.
func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}

// Len returns the number of accounts in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.accounts)
}

// Accounts returns all accounts, ARR-descending.
func (s *Snapshot) Accounts() []model.Account {
	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// Account returns the account with the given ID.
func (s *Snapshot) Account(id string) (model.Account, bool) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return model.Account{}, false
}

// TopByARR returns the n largest accounts by ARR, ties broken by name
// ascending. n <= 0 or n > len returns everything.
func (s *Snapshot) TopByARR(n int) []model.Account {
	out := s.Accounts()
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// TopAtRisk returns the at-risk accounts (health score below the at-risk
// threshold), capped to the top five by ARR.
func (s *Snapshot) TopAtRisk() []model.Account {
	return capLen(s.BelowHealth(kpi.AtRiskThreshold), TopAtRiskLimit)
}

// BelowHealth returns accounts with a health score strictly below the
// threshold, ARR-descending.
func (s *Snapshot) BelowHealth(threshold float64) []model.Account {
	var out []model.Account
	for _, a := range s.accounts {
		if a.HealthScore < threshold {
			out = append(out, a)
		}
	}
	return out
}

// BySegment returns accounts in the given segment (case-insensitive),
// ARR-descending.
func (s *Snapshot) BySegment(segment string) []model.Account {
	var out []model.Account
	for _, a := range s.accounts {
		if strings.EqualFold(a.Segment, segment) {
			out = append(out, a)
		}
	}
	return out
}

// KPIs computes the portfolio rollup for the snapshot.
func (s *Snapshot) KPIs() model.KPISummary {
	return kpi.Aggregate(s.accounts, s.takenAt)
}

func sortByARR(accounts []model.Account) {
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].ARR != accounts[j].ARR {
			return accounts[i].ARR > accounts[j].ARR
		}
		return accounts[i].Name < accounts[j].Name
	})
}

func capLen(accounts []model.Account, n int) []model.Account {
	if len(accounts) > n {
		return accounts[:n]
	}
	return accounts
}
