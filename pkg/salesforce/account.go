package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Account represents a Salesforce Account record with the customer-success
// fields this tool reads. Health signal fields live in a custom-field
// package installed in the org.
type Account struct {
	ID               string  `json:"Id" salesforce:"Id"`
	Name             string  `json:"Name" salesforce:"Name"`
	Industry         string  `json:"Industry" salesforce:"Industry"`
	Type             string  `json:"Type" salesforce:"Type"`
	OwnerName        string  `json:"Owner_Name__c" salesforce:"Owner_Name__c"`
	Region           string  `json:"Region__c" salesforce:"Region__c"`
	Segment          string  `json:"Segment__c" salesforce:"Segment__c"`
	ExecutiveContact string  `json:"Executive_Contact__c" salesforce:"Executive_Contact__c"`
	ARR              float64 `json:"ARR__c" salesforce:"ARR__c"`
	RenewalDate      string  `json:"Renewal_Date__c" salesforce:"Renewal_Date__c"`
	NPS              float64 `json:"NPS__c" salesforce:"NPS__c"`
	UsagePercent     float64 `json:"Usage_Percent__c" salesforce:"Usage_Percent__c"`
	OpenTickets      int     `json:"Open_Tickets__c" salesforce:"Open_Tickets__c"`
	BillingHealth    float64 `json:"Billing_Health__c" salesforce:"Billing_Health__c"`
}

// accountFields are the SOQL fields selected for Account queries.
var accountFields = []string{
	"Id", "Name", "Industry", "Type",
	"Owner_Name__c", "Region__c", "Segment__c", "Executive_Contact__c",
	"ARR__c", "Renewal_Date__c",
	"NPS__c", "Usage_Percent__c", "Open_Tickets__c", "Billing_Health__c",
}

// ListAccounts queries all customer accounts with health signal fields
// populated. A non-empty segment restricts the query.
func ListAccounts(ctx context.Context, c Client, segment string) ([]Account, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Account WHERE Renewal_Date__c != null",
		strings.Join(accountFields, ", "),
	)
	if segment != "" {
		soql += fmt.Sprintf(" AND Segment__c = '%s'", escapeSoql(segment))
	}

	var accounts []Account
	if err := c.Query(ctx, soql, &accounts); err != nil {
		return nil, eris.Wrap(err, "sf: list accounts")
	}
	return accounts, nil
}

// HealthUpdate carries derived fields to write back to one CRM account.
type HealthUpdate struct {
	AccountID   string
	HealthScore float64
	RiskTier    string
}

// PushHealthScores writes derived health scores and risk tiers back to
// the CRM in bulk. It returns an error listing any records the CRM
// rejected; successful records are not rolled back.
func PushHealthScores(ctx context.Context, c Client, updates []HealthUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	records := make([]CollectionRecord, len(updates))
	for i, u := range updates {
		records[i] = CollectionRecord{
			ID: u.AccountID,
			Fields: map[string]any{
				"Health_Score__c": u.HealthScore,
				"Risk_Tier__c":    u.RiskTier,
			},
		}
	}

	results, err := c.UpdateCollection(ctx, "Account", records)
	if err != nil {
		return eris.Wrap(err, "sf: push health scores")
	}

	var failed []string
	for _, r := range results {
		if !r.Success {
			failed = append(failed, fmt.Sprintf("%s: %s", r.ID, strings.Join(r.Errors, ", ")))
		}
	}
	if len(failed) > 0 {
		return eris.Errorf("sf: push health scores: %d records failed: %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
