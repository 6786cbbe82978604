package playbook

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/health-cli/internal/model"
)

// Recommender evaluates the rule table against account state and merges
// synthesized items with the account's existing action items.
type Recommender struct {
	rules []Rule
}

// NewRecommender creates a Recommender over the builtin rule table.
func NewRecommender() *Recommender {
	return &Recommender{rules: BuiltinRules()}
}

// NewRecommenderWithRules creates a Recommender over a custom rule table.
// Rule IDs must be unique; synthesized item identity derives from them.
func NewRecommenderWithRules(rules []Rule) (*Recommender, error) {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, eris.Errorf("playbook: duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
	}
	return &Recommender{rules: rules}, nil
}

// Rules returns the recommender's rule table.
func (r *Recommender) Rules() []Rule {
	return r.rules
}

// Recommend returns the account's action items merged with any items the
// rule table synthesizes, ordered by status rank (suggested first) and
// then due date.
//
// Each rule is evaluated independently; an account may trigger zero or
// many. Synthesized items reuse the rule's stable ID, so an item already
// present with that ID is not duplicated and re-running on unchanged
// state is idempotent. Existing manual items are never deduplicated or
// removed, only re-ranked.
func (r *Recommender) Recommend(a model.Account, now time.Time) []model.PlaybookItem {
	merged := make([]model.PlaybookItem, len(a.ActionItems))
	copy(merged, a.ActionItems)

	existing := make(map[string]bool, len(merged))
	for _, item := range merged {
		existing[item.ID] = true
	}

	for _, rule := range r.rules {
		if !rule.Matches(a) || existing[rule.ID] {
			continue
		}
		merged = append(merged, model.PlaybookItem{
			ID:       rule.ID,
			Name:     rule.Name,
			Status:   model.PlaybookSuggested,
			DueDate:  now.AddDate(0, 0, rule.DueOffsetDays),
			Priority: rule.Priority,
			Origin:   model.OriginEngine,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		ri, rj := merged[i].Status.StatusRank(), merged[j].Status.StatusRank()
		if ri != rj {
			return ri < rj
		}
		return merged[i].DueDate.Before(merged[j].DueDate)
	})

	return merged
}
