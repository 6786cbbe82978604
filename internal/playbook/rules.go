// Package playbook implements the retention-action recommender: a
// declarative rule table evaluated against account state, merged with
// manually created action items.
package playbook

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/health-cli/internal/model"
)

// Metric names a raw or derived account field a rule can test.
type Metric string

const (
	MetricHealthScore   Metric = "health_score"
	MetricUsagePercent  Metric = "usage_percent"
	MetricOpenTickets   Metric = "open_tickets"
	MetricBillingHealth Metric = "billing_health"
	MetricNPS           Metric = "nps"
)

// Op is a comparison operator.
type Op string

const (
	OpLT Op = "lt"
	OpGT Op = "gt"
	OpLE Op = "le"
	OpGE Op = "ge"
)

// Rule is one row of the recommendation table: when the account metric
// compares true against the threshold, an item is synthesized from the
// template fields. Rules carry stable IDs so repeated evaluation on
// unchanged state is idempotent.
type Rule struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Metric        Metric         `yaml:"metric"`
	Op            Op             `yaml:"op"`
	Threshold     float64        `yaml:"threshold"`
	DueOffsetDays int            `yaml:"due_offset_days"`
	Priority      model.Priority `yaml:"priority"`
}

// BuiltinRules returns the standard recommendation table.
func BuiltinRules() []Rule {
	return []Rule{
		{
			ID:            "emergency-checkin",
			Name:          "Emergency Check-in Call",
			Metric:        MetricHealthScore,
			Op:            OpLT,
			Threshold:     60,
			DueOffsetDays: 2,
			Priority:      model.PriorityHigh,
		},
		{
			ID:            "adoption-workshop",
			Name:          "Product Adoption Workshop",
			Metric:        MetricUsagePercent,
			Op:            OpLT,
			Threshold:     50,
			DueOffsetDays: 7,
			Priority:      model.PriorityHigh,
		},
		{
			ID:            "support-review",
			Name:          "Support Process Review",
			Metric:        MetricOpenTickets,
			Op:            OpGT,
			Threshold:     5,
			DueOffsetDays: 5,
			Priority:      model.PriorityMedium,
		},
	}
}

// Matches evaluates the rule's predicate against an account.
func (r Rule) Matches(a model.Account) bool {
	var v float64
	switch r.Metric {
	case MetricHealthScore:
		v = a.HealthScore
	case MetricUsagePercent:
		v = a.UsagePercent
	case MetricOpenTickets:
		v = float64(a.OpenTickets)
	case MetricBillingHealth:
		v = a.BillingHealth
	case MetricNPS:
		v = a.NPS
	default:
		return false
	}

	switch r.Op {
	case OpLT:
		return v < r.Threshold
	case OpGT:
		return v > r.Threshold
	case OpLE:
		return v <= r.Threshold
	case OpGE:
		return v >= r.Threshold
	}
	return false
}

// Validate checks a rule for completeness.
func (r Rule) Validate() error {
	var errs []string
	if strings.TrimSpace(r.ID) == "" {
		errs = append(errs, "id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	switch r.Metric {
	case MetricHealthScore, MetricUsagePercent, MetricOpenTickets, MetricBillingHealth, MetricNPS:
	default:
		errs = append(errs, fmt.Sprintf("unknown metric %q", r.Metric))
	}
	switch r.Op {
	case OpLT, OpGT, OpLE, OpGE:
	default:
		errs = append(errs, fmt.Sprintf("unknown op %q", r.Op))
	}
	if r.DueOffsetDays < 0 {
		errs = append(errs, "due_offset_days must be >= 0")
	}
	switch r.Priority {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
	default:
		errs = append(errs, fmt.Sprintf("unknown priority %q", r.Priority))
	}
	if len(errs) > 0 {
		return eris.Errorf("playbook: rule %q invalid: %s", r.ID, strings.Join(errs, "; "))
	}
	return nil
}

// LoadRulesFromFile reads additional rules from a YAML file and validates
// each. The file holds a list of Rule documents.
func LoadRulesFromFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "playbook: read rules file")
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, eris.Wrap(err, "playbook: unmarshal rules file")
	}

	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	return rules, nil
}
