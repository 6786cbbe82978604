package playbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/health-cli/internal/model"
)

func TestRuleMatches(t *testing.T) {
	a := model.Account{HealthScore: 55, UsagePercent: 60, OpenTickets: 3, BillingHealth: 70, NPS: -10}

	tests := []struct {
		name string
		rule Rule
		want bool
	}{
		{"lt true", Rule{Metric: MetricHealthScore, Op: OpLT, Threshold: 60}, true},
		{"lt false at boundary", Rule{Metric: MetricHealthScore, Op: OpLT, Threshold: 55}, false},
		{"le true at boundary", Rule{Metric: MetricHealthScore, Op: OpLE, Threshold: 55}, true},
		{"gt on tickets", Rule{Metric: MetricOpenTickets, Op: OpGT, Threshold: 2}, true},
		{"ge on billing", Rule{Metric: MetricBillingHealth, Op: OpGE, Threshold: 70}, true},
		{"negative nps", Rule{Metric: MetricNPS, Op: OpLT, Threshold: 0}, true},
		{"unknown metric", Rule{Metric: "churn_vibes", Op: OpLT, Threshold: 100}, false},
		{"unknown op", Rule{Metric: MetricNPS, Op: "eq", Threshold: -10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Matches(a))
		})
	}
}

func TestRuleValidate(t *testing.T) {
	for _, r := range BuiltinRules() {
		assert.NoError(t, r.Validate())
	}

	bad := Rule{
		Metric:        "bogus",
		Op:            "between",
		DueOffsetDays: -1,
	}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
	assert.Contains(t, err.Error(), "unknown metric")
	assert.Contains(t, err.Error(), "unknown op")
}

func TestLoadRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := `
- id: billing-escalation
  name: Billing Escalation Review
  metric: billing_health
  op: lt
  threshold: 40
  due_offset_days: 3
  priority: high
- id: nps-outreach
  name: Detractor Outreach
  metric: nps
  op: le
  threshold: 0
  due_offset_days: 10
  priority: medium
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	rules, err := LoadRulesFromFile(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "billing-escalation", rules[0].ID)
	assert.Equal(t, MetricBillingHealth, rules[0].Metric)
	assert.Equal(t, 40.0, rules[0].Threshold)
	assert.Equal(t, model.PriorityMedium, rules[1].Priority)
}

func TestLoadRulesFromFile_InvalidRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: x\n  name: y\n"), 0o644))

	_, err := LoadRulesFromFile(path)
	assert.Error(t, err)
}

func TestLoadRulesFromFile_Missing(t *testing.T) {
	_, err := LoadRulesFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
