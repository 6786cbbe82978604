package source

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/health-cli/internal/config"
	"github.com/sells-group/health-cli/internal/model"
)

var fixtureNow = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func fixedFixture(seed int64, count int) *Fixture {
	return NewFixture(config.FixtureConfig{Seed: seed, Count: count}).
		WithClock(func() time.Time { return fixtureNow })
}

func TestFixture_Deterministic(t *testing.T) {
	first, err := fixedFixture(42, 50).Accounts(context.Background())
	require.NoError(t, err)
	second, err := fixedFixture(42, 50).Accounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFixture_SeedChangesPopulation(t *testing.T) {
	a, err := fixedFixture(42, 10).Accounts(context.Background())
	require.NoError(t, err)
	b, err := fixedFixture(43, 10).Accounts(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFixture_GeneratesValidAccounts(t *testing.T) {
	accounts, err := fixedFixture(42, 120).Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 120)

	assert.NoError(t, model.ValidateAll(accounts))

	seen := make(map[string]bool, len(accounts))
	for i, a := range accounts {
		assert.Equal(t, fmt.Sprintf("ACC-%04d", i+1), a.ID)
		assert.False(t, seen[a.Name], "duplicate name %s", a.Name)
		seen[a.Name] = true

		assert.Len(t, a.UsageSeries, 31)
		assert.NotEmpty(t, a.ActionItems)
		assert.NotEmpty(t, a.RecentTickets)
		assert.True(t, a.RenewalDate.After(fixtureNow))

		// Generated series are raw input: the detector owns the flags.
		for _, s := range a.UsageSeries {
			assert.False(t, s.Anomaly)
		}
	}
}

func TestFixture_DefaultCount(t *testing.T) {
	accounts, err := fixedFixture(1, 0).Accounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 50)
}
