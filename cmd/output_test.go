package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/scoring"
)

func TestFormatARR(t *testing.T) {
	assert.Equal(t, "$1,250,000", formatARR(1250000))
	assert.Equal(t, "$0", formatARR(0))
}

func TestPrintAccountTable(t *testing.T) {
	accounts := []model.Account{
		{
			ID: "ACC-0001", Name: "Acme Corp", Segment: "Enterprise",
			ARR: 500000, HealthScore: 82.5, RiskTier: model.RiskLow,
			RenewalDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
			CSM:         "Jordan Lee",
		},
		{
			ID: "ACC-0002", Name: "Globex", Segment: "SMB",
			ARR:         80000,
			RenewalDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	printAccountTable(&buf, accounts)
	out := buf.String()

	assert.Contains(t, out, "ACC-0001")
	assert.Contains(t, out, "82.5")
	assert.Contains(t, out, "low")
	assert.Contains(t, out, "$500,000")
	// Unscored account renders blank derived columns, not a fake zero.
	assert.Contains(t, out, "ACC-0002")
	assert.NotContains(t, out, "0.0")
}

func TestPrintBreakdown(t *testing.T) {
	a := model.Account{ID: "ACC-0001", Name: "Acme Corp", HealthScore: 77.0}
	b := scoring.Breakdown{
		Score: 77.0,
		Components: map[scoring.Component]float64{
			scoring.ComponentNPS:     70.0,
			scoring.ComponentUsage:   80.0,
			scoring.ComponentTickets: 70.0,
			scoring.ComponentBilling: 90.0,
		},
	}

	var buf bytes.Buffer
	printBreakdown(&buf, a, b)
	out := buf.String()

	assert.Contains(t, out, "Acme Corp (ACC-0001)")
	assert.Contains(t, out, "77.0")
	for _, c := range []scoring.Component{scoring.ComponentNPS, scoring.ComponentUsage, scoring.ComponentTickets, scoring.ComponentBilling} {
		assert.Contains(t, out, string(c))
	}
}

func TestHealthUpdates(t *testing.T) {
	accounts := []model.Account{
		{ID: "001A", HealthScore: 82.5, RiskTier: model.RiskLow},
		{ID: "001B", HealthScore: 41.0, RiskTier: model.RiskHigh},
	}

	updates := healthUpdates(accounts)
	require.Len(t, updates, 2)
	assert.Equal(t, "001A", updates[0].AccountID)
	assert.Equal(t, 82.5, updates[0].HealthScore)
	assert.Equal(t, "low", updates[0].RiskTier)
	assert.Equal(t, "high", updates[1].RiskTier)
}
