package store

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/health-cli/internal/model"
)

// accountColumns is the shared SELECT list; scanAccount must stay in sync.
const accountColumns = `id, name, arr, segment, industry, region, csm, executive_contact,
	renewal_date, nps, usage_percent, open_tickets, billing_health,
	health_score, risk_tier, usage_series, action_items, recent_tickets`

// scanner covers *sql.Row, *sql.Rows, pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*model.Account, error) {
	var (
		a                     model.Account
		tier                  string
		series, items, ticket *string
	)
	err := row.Scan(
		&a.ID, &a.Name, &a.ARR, &a.Segment, &a.Industry, &a.Region, &a.CSM, &a.ExecutiveContact,
		&a.RenewalDate, &a.NPS, &a.UsagePercent, &a.OpenTickets, &a.BillingHealth,
		&a.HealthScore, &tier, &series, &items, &ticket,
	)
	if err != nil {
		return nil, err
	}
	a.RiskTier = model.RiskTier(tier)

	if series != nil && *series != "" {
		if err := json.Unmarshal([]byte(*series), &a.UsageSeries); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal usage series %s", a.ID)
		}
	}
	if items != nil && *items != "" {
		if err := json.Unmarshal([]byte(*items), &a.ActionItems); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal action items %s", a.ID)
		}
	}
	if ticket != nil && *ticket != "" {
		if err := json.Unmarshal([]byte(*ticket), &a.RecentTickets); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal recent tickets %s", a.ID)
		}
	}
	return &a, nil
}

// marshalCollections JSON-encodes an account's owned collections for the
// text columns shared by both backends.
func marshalCollections(a model.Account) (series, items, tickets string, err error) {
	b, err := json.Marshal(a.UsageSeries)
	if err != nil {
		return "", "", "", eris.Wrapf(err, "store: marshal usage series %s", a.ID)
	}
	series = string(b)

	b, err = json.Marshal(a.ActionItems)
	if err != nil {
		return "", "", "", eris.Wrapf(err, "store: marshal action items %s", a.ID)
	}
	items = string(b)

	b, err = json.Marshal(a.RecentTickets)
	if err != nil {
		return "", "", "", eris.Wrapf(err, "store: marshal recent tickets %s", a.ID)
	}
	tickets = string(b)

	return series, items, tickets, nil
}

func marshalSeries(a model.Account) (string, error) {
	b, err := json.Marshal(a.UsageSeries)
	if err != nil {
		return "", eris.Wrapf(err, "store: marshal usage series %s", a.ID)
	}
	return string(b), nil
}

func marshalItems(accountID string, items []model.PlaybookItem) (string, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return "", eris.Wrapf(err, "store: marshal action items %s", accountID)
	}
	return string(b), nil
}

func marshalSummary(summary model.KPISummary) (string, error) {
	b, err := json.Marshal(summary)
	if err != nil {
		return "", eris.Wrap(err, "store: marshal kpi snapshot")
	}
	return string(b), nil
}

func unmarshalSummary(raw string) (*model.KPISummary, error) {
	var s model.KPISummary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal kpi snapshot")
	}
	return &s, nil
}
