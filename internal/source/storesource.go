package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/store"
)

// StoreSource produces accounts from the local store.
type StoreSource struct {
	store  store.Store
	filter store.AccountFilter
}

// NewStoreSource creates a store-backed source.
func NewStoreSource(st store.Store, filter store.AccountFilter) *StoreSource {
	return &StoreSource{store: st, filter: filter}
}

// Accounts implements Source.
func (s *StoreSource) Accounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, s.filter)
	if err != nil {
		return nil, eris.Wrap(err, "source: list accounts from store")
	}
	if err := model.ValidateAll(accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
