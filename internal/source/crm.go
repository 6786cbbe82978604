package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/pkg/salesforce"
)

// crmDateLayout is the Salesforce date field format.
const crmDateLayout = "2006-01-02"

// CRMSource pulls accounts from Salesforce. The CRM holds signal fields
// and commercial attributes only; usage series and tickets come from
// other pipelines and are left empty here.
type CRMSource struct {
	client  salesforce.Client
	segment string
}

// NewCRMSource creates a Salesforce-backed source. A non-empty segment
// restricts the pull.
func NewCRMSource(client salesforce.Client, segment string) *CRMSource {
	return &CRMSource{client: client, segment: segment}
}

// Accounts implements Source.
func (s *CRMSource) Accounts(ctx context.Context) ([]model.Account, error) {
	records, err := salesforce.ListAccounts(ctx, s.client, s.segment)
	if err != nil {
		return nil, eris.Wrap(err, "source: crm pull")
	}

	accounts := make([]model.Account, 0, len(records))
	for _, r := range records {
		a, err := mapCRMAccount(r)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	if err := model.ValidateAll(accounts); err != nil {
		return nil, err
	}

	zap.L().Info("source: crm pull complete",
		zap.Int("accounts", len(accounts)),
		zap.String("segment", s.segment),
	)
	return accounts, nil
}

func mapCRMAccount(r salesforce.Account) (model.Account, error) {
	renewal, err := time.Parse(crmDateLayout, r.RenewalDate)
	if err != nil {
		return model.Account{}, eris.Wrapf(err, "source: crm account %s: parse renewal date %q", r.ID, r.RenewalDate)
	}

	return model.Account{
		ID:               r.ID,
		Name:             r.Name,
		ARR:              r.ARR,
		Segment:          r.Segment,
		Industry:         r.Industry,
		Region:           r.Region,
		CSM:              r.OwnerName,
		ExecutiveContact: r.ExecutiveContact,
		RenewalDate:      renewal,
		NPS:              r.NPS,
		UsagePercent:     r.UsagePercent,
		OpenTickets:      r.OpenTickets,
		BillingHealth:    r.BillingHealth,
	}, nil
}
