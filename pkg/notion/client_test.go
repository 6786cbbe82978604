package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *MockClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *MockClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func TestMockClientSatisfiesInterface(t *testing.T) {
	t.Parallel()
	var _ Client = (*MockClient)(nil)
}

func TestNewClientDefaultRateLimit(t *testing.T) {
	t.Parallel()
	c := NewClient("ntn_token").(*notionClient)
	require.NotNil(t, c.limiter)
	assert.Equal(t, rate.Limit(defaultRPS), c.limiter.Limit())
}

func TestWithRateLimit(t *testing.T) {
	t.Parallel()
	c := NewClient("ntn_token", WithRateLimit(10)).(*notionClient)
	require.NotNil(t, c.limiter)
	assert.Equal(t, rate.Limit(10), c.limiter.Limit())
	assert.Equal(t, 10, c.limiter.Burst())
}

func TestWithRateLimitDisabled(t *testing.T) {
	t.Parallel()
	c := NewClient("ntn_token", WithRateLimit(0)).(*notionClient)
	assert.Nil(t, c.limiter)

	// An unthrottled client never blocks.
	require.NoError(t, c.throttle(context.Background()))
}
