package source

import (
	"context"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/store"
	sfpkg "github.com/sells-group/health-cli/pkg/salesforce"
)

// mockSF implements salesforce.Client for CRM source tests.
type mockSF struct {
	records  []sfpkg.Account
	queryErr error
	lastSOQL string
}

func (m *mockSF) Query(_ context.Context, soql string, out any) error {
	m.lastSOQL = soql
	if m.queryErr != nil {
		return m.queryErr
	}
	*(out.(*[]sfpkg.Account)) = m.records
	return nil
}

func (m *mockSF) UpdateOne(context.Context, string, string, map[string]any) error {
	return nil
}

func (m *mockSF) UpdateCollection(context.Context, string, []sfpkg.CollectionRecord) ([]sfpkg.CollectionResult, error) {
	return nil, nil
}

// mockStore implements store.Store over a static account list.
type mockStore struct {
	accounts   []model.Account
	listErr    error
	lastFilter store.AccountFilter
}

func (m *mockStore) UpsertAccounts(context.Context, []model.Account) error { return nil }

func (m *mockStore) GetAccount(context.Context, string) (*model.Account, error) {
	return nil, nil
}

func (m *mockStore) ListAccounts(_ context.Context, filter store.AccountFilter) ([]model.Account, error) {
	m.lastFilter = filter
	return m.accounts, m.listErr
}

func (m *mockStore) SaveDerived(context.Context, []model.Account) error { return nil }

func (m *mockStore) ReplaceActionItems(context.Context, string, []model.PlaybookItem) error {
	return nil
}

func (m *mockStore) SaveKPISnapshot(context.Context, model.KPISummary) (string, error) {
	return "", nil
}

func (m *mockStore) ListKPISnapshots(context.Context, int) ([]model.KPISummary, error) {
	return nil, nil
}

func (m *mockStore) Migrate(context.Context) error { return nil }
func (m *mockStore) Close() error                  { return nil }
