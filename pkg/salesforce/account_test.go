package salesforce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient implements Client for testing.
type mockClient struct {
	queryFn            func(ctx context.Context, soql string, out any) error
	updateOneFn        func(ctx context.Context, sObjectName string, id string, fields map[string]any) error
	updateCollectionFn func(ctx context.Context, sObjectName string, records []CollectionRecord) ([]CollectionResult, error)
}

func (m *mockClient) Query(ctx context.Context, soql string, out any) error {
	if m.queryFn != nil {
		return m.queryFn(ctx, soql, out)
	}
	return nil
}

func (m *mockClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	if m.updateOneFn != nil {
		return m.updateOneFn(ctx, sObjectName, id, fields)
	}
	return nil
}

func (m *mockClient) UpdateCollection(ctx context.Context, sObjectName string, records []CollectionRecord) ([]CollectionResult, error) {
	if m.updateCollectionFn != nil {
		return m.updateCollectionFn(ctx, sObjectName, records)
	}
	results := make([]CollectionResult, len(records))
	for i, r := range records {
		results[i] = CollectionResult{ID: r.ID, Success: true}
	}
	return results, nil
}

func TestListAccounts_BuildsSOQL(t *testing.T) {
	var captured string
	mc := &mockClient{
		queryFn: func(_ context.Context, soql string, out any) error {
			captured = soql
			*(out.(*[]Account)) = []Account{{ID: "001A", Name: "Acme Corp"}}
			return nil
		},
	}

	accounts, err := ListAccounts(context.Background(), mc, "")
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	assert.Contains(t, captured, "FROM Account")
	assert.Contains(t, captured, "Renewal_Date__c != null")
	assert.Contains(t, captured, "Usage_Percent__c")
	assert.NotContains(t, captured, "Segment__c =")
}

func TestListAccounts_SegmentFilterEscaped(t *testing.T) {
	var captured string
	mc := &mockClient{
		queryFn: func(_ context.Context, soql string, _ any) error {
			captured = soql
			return nil
		},
	}

	_, err := ListAccounts(context.Background(), mc, "Bob's Segment")
	require.NoError(t, err)
	assert.Contains(t, captured, `Segment__c = 'Bob\'s Segment'`)
}

func TestListAccounts_QueryError(t *testing.T) {
	mc := &mockClient{
		queryFn: func(context.Context, string, any) error {
			return assert.AnError
		},
	}

	_, err := ListAccounts(context.Background(), mc, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list accounts")
}

func TestPushHealthScores_BuildsRecords(t *testing.T) {
	var captured []CollectionRecord
	mc := &mockClient{
		updateCollectionFn: func(_ context.Context, sObjectName string, records []CollectionRecord) ([]CollectionResult, error) {
			assert.Equal(t, "Account", sObjectName)
			captured = records
			results := make([]CollectionResult, len(records))
			for i, r := range records {
				results[i] = CollectionResult{ID: r.ID, Success: true}
			}
			return results, nil
		},
	}

	updates := []HealthUpdate{
		{AccountID: "001A", HealthScore: 82.5, RiskTier: "low"},
		{AccountID: "001B", HealthScore: 41.0, RiskTier: "high"},
	}
	require.NoError(t, PushHealthScores(context.Background(), mc, updates))

	require.Len(t, captured, 2)
	assert.Equal(t, "001A", captured[0].ID)
	assert.Equal(t, 82.5, captured[0].Fields["Health_Score__c"])
	assert.Equal(t, "low", captured[0].Fields["Risk_Tier__c"])
}

func TestPushHealthScores_PartialFailure(t *testing.T) {
	mc := &mockClient{
		updateCollectionFn: func(_ context.Context, _ string, records []CollectionRecord) ([]CollectionResult, error) {
			return []CollectionResult{
				{ID: "001A", Success: true},
				{ID: "001B", Success: false, Errors: []string{"FIELD_INTEGRITY_EXCEPTION"}},
			}, nil
		},
	}

	err := PushHealthScores(context.Background(), mc, []HealthUpdate{
		{AccountID: "001A"}, {AccountID: "001B"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001B")
	assert.Contains(t, err.Error(), "FIELD_INTEGRITY_EXCEPTION")
}

func TestPushHealthScores_Empty(t *testing.T) {
	called := false
	mc := &mockClient{
		updateCollectionFn: func(context.Context, string, []CollectionRecord) ([]CollectionResult, error) {
			called = true
			return nil, nil
		},
	}

	require.NoError(t, PushHealthScores(context.Background(), mc, nil))
	assert.False(t, called)
}

func TestEscapeSoql(t *testing.T) {
	assert.Equal(t, `O\'Brien`, escapeSoql("O'Brien"))
	assert.Equal(t, "plain", escapeSoql("plain"))
}
