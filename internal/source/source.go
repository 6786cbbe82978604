// Package source defines where account records come from. The engine only
// depends on the Account shape, never on how records were produced, so a
// deterministic fixture, the local store, and the CRM all satisfy the same
// interface.
package source

import (
	"context"

	"github.com/sells-group/health-cli/internal/model"
)

// Source produces a collection of account records with raw signal fields
// populated. Implementations validate records before returning them; a
// Source never returns a partially valid batch.
type Source interface {
	Accounts(ctx context.Context) ([]model.Account, error)
}
