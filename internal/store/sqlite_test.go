package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/health-cli/internal/model"
)

var storeNow = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func storedAccount(id, name string, arr float64) model.Account {
	return model.Account{
		ID:               id,
		Name:             name,
		ARR:              arr,
		Segment:          "Enterprise",
		Industry:         "Technology",
		Region:           "Europe",
		CSM:              "Mike Chen",
		ExecutiveContact: "vp@" + id + ".example.com",
		RenewalDate:      storeNow.AddDate(0, 4, 0),
		NPS:              25,
		UsagePercent:     80,
		OpenTickets:      3,
		BillingHealth:    92,
		UsageSeries: []model.UsageSample{
			{Date: storeNow.AddDate(0, 0, -2), Value: 81},
			{Date: storeNow.AddDate(0, 0, -1), Value: 79, Anomaly: true},
		},
		ActionItems: []model.PlaybookItem{
			{ID: "PB-1", Name: "QBR Prep", Status: model.PlaybookActive, DueDate: storeNow.AddDate(0, 0, 14), Priority: model.PriorityMedium, Origin: model.OriginManual},
		},
		RecentTickets: []model.SupportTicket{
			{ID: "TICK-1", Title: "Login issues with SSO", Severity: model.SeverityHigh, Status: model.TicketOpen, CreatedAt: storeNow.AddDate(0, 0, -5)},
		},
	}
}

func TestSQLite_UpsertAndGetRoundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	want := storedAccount("ACC-0001", "Acme Corp", 250_000)
	require.NoError(t, st.UpsertAccounts(ctx, []model.Account{want}))

	got, err := st.GetAccount(ctx, "ACC-0001")
	require.NoError(t, err)

	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.ARR, got.ARR)
	assert.Equal(t, want.ExecutiveContact, got.ExecutiveContact)
	assert.True(t, want.RenewalDate.Equal(got.RenewalDate))
	require.Len(t, got.UsageSeries, 2)
	assert.True(t, got.UsageSeries[1].Anomaly)
	require.Len(t, got.ActionItems, 1)
	assert.Equal(t, model.PlaybookActive, got.ActionItems[0].Status)
	require.Len(t, got.RecentTickets, 1)
	assert.Equal(t, model.SeverityHigh, got.RecentTickets[0].Severity)
}

func TestSQLite_GetAccountNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetAccount(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpsertPreservesDerivedFields(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := storedAccount("ACC-0001", "Acme Corp", 250_000)
	require.NoError(t, st.UpsertAccounts(ctx, []model.Account{a}))

	// Score it.
	a.HealthScore = 82.5
	a.RiskTier = model.RiskLow
	require.NoError(t, st.SaveDerived(ctx, []model.Account{a}))

	// A fresh ingest of raw signals must not clobber derived fields.
	raw := storedAccount("ACC-0001", "Acme Corporation", 260_000)
	require.NoError(t, st.UpsertAccounts(ctx, []model.Account{raw}))

	got, err := st.GetAccount(ctx, "ACC-0001")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", got.Name)
	assert.Equal(t, 260_000.0, got.ARR)
	assert.Equal(t, 82.5, got.HealthScore)
	assert.Equal(t, model.RiskLow, got.RiskTier)
}

func TestSQLite_UpsertRejectsInvalid(t *testing.T) {
	st := newTestStore(t)

	bad := storedAccount("ACC-0001", "Acme Corp", 250_000)
	bad.NPS = 300
	err := st.UpsertAccounts(context.Background(), []model.Account{bad})
	assert.Error(t, err)
}

func TestSQLite_ListAccountsFiltersAndOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := storedAccount("ACC-0001", "Acme Corp", 250_000)
	b := storedAccount("ACC-0002", "Globex", 900_000)
	b.Segment = "SMB"
	c := storedAccount("ACC-0003", "Initech", 900_000)
	require.NoError(t, st.UpsertAccounts(ctx, []model.Account{a, b, c}))

	// Derived fields for tier/score filters.
	b.HealthScore, b.RiskTier = 40, model.RiskHigh
	c.HealthScore, c.RiskTier = 75, model.RiskMedium
	require.NoError(t, st.SaveDerived(ctx, []model.Account{b, c}))

	all, err := st.ListAccounts(ctx, AccountFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// ARR descending, name ascending on ties.
	assert.Equal(t, "ACC-0002", all[0].ID)
	assert.Equal(t, "ACC-0003", all[1].ID)
	assert.Equal(t, "ACC-0001", all[2].ID)

	smb, err := st.ListAccounts(ctx, AccountFilter{Segment: "SMB"})
	require.NoError(t, err)
	require.Len(t, smb, 1)
	assert.Equal(t, "ACC-0002", smb[0].ID)

	high, err := st.ListAccounts(ctx, AccountFilter{RiskTier: model.RiskHigh})
	require.NoError(t, err)
	require.Len(t, high, 1)

	atRisk, err := st.ListAccounts(ctx, AccountFilter{MaxHealth: 60})
	require.NoError(t, err)
	require.Len(t, atRisk, 2) // unscored "a" at 0 plus "b" at 40

	limited, err := st.ListAccounts(ctx, AccountFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLite_ReplaceActionItems(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := storedAccount("ACC-0001", "Acme Corp", 250_000)
	require.NoError(t, st.UpsertAccounts(ctx, []model.Account{a}))

	items := []model.PlaybookItem{
		{ID: "emergency-checkin", Name: "Emergency Check-in Call", Status: model.PlaybookSuggested, DueDate: storeNow.AddDate(0, 0, 2), Priority: model.PriorityHigh, Origin: model.OriginEngine},
	}
	require.NoError(t, st.ReplaceActionItems(ctx, "ACC-0001", items))

	got, err := st.GetAccount(ctx, "ACC-0001")
	require.NoError(t, err)
	require.Len(t, got.ActionItems, 1)
	assert.Equal(t, "emergency-checkin", got.ActionItems[0].ID)

	err = st.ReplaceActionItems(ctx, "ACC-9999", items)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_KPISnapshotHistory(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	older := model.KPISummary{TotalAccounts: 10, HealthyFraction: 0.5, ComputedAt: storeNow.AddDate(0, 0, -7)}
	newer := model.KPISummary{TotalAccounts: 12, HealthyFraction: 0.6, AtRiskFraction: 0.25, TotalARRAtRisk: 900_000, AverageNPS: 12.5, RenewalsThisQuarter: 3, ComputedAt: storeNow}

	id1, err := st.SaveKPISnapshot(ctx, older)
	require.NoError(t, err)
	id2, err := st.SaveKPISnapshot(ctx, newer)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	snaps, err := st.ListKPISnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	// Newest first.
	assert.Equal(t, 12, snaps[0].TotalAccounts)
	assert.InDelta(t, 0.25, snaps[0].AtRiskFraction, 0.001)

	one, err := st.ListKPISnapshots(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, 12, one[0].TotalAccounts)
}
