package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/kpi"
	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/store"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the portfolio to an XLSX workbook",
	Long:  "Writes three sheets: Accounts (every stored account), At Risk (accounts below the at-risk threshold), and KPIs (the current rollup).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		accounts, err := st.ListAccounts(ctx, store.AccountFilter{})
		if err != nil {
			return eris.Wrap(err, "list accounts")
		}
		if len(accounts) == 0 {
			return eris.New("no accounts to export")
		}

		f := xlsx.NewFile()

		accountsSheet, err := f.AddSheet("Accounts")
		if err != nil {
			return eris.Wrap(err, "add sheet")
		}
		writeAccountSheet(accountsSheet, accounts)

		atRisk := make([]model.Account, 0)
		for _, a := range accounts {
			if a.RiskTier != "" && a.HealthScore < kpi.AtRiskThreshold {
				atRisk = append(atRisk, a)
			}
		}
		atRiskSheet, err := f.AddSheet("At Risk")
		if err != nil {
			return eris.Wrap(err, "add sheet")
		}
		writeAccountSheet(atRiskSheet, atRisk)

		kpiSheet, err := f.AddSheet("KPIs")
		if err != nil {
			return eris.Wrap(err, "add sheet")
		}
		writeKPISheet(kpiSheet, kpi.Aggregate(accounts, time.Now()))

		if err := f.Save(exportOut); err != nil {
			return eris.Wrap(err, "save workbook")
		}

		zap.L().Info("exported workbook",
			zap.String("path", exportOut),
			zap.Int("accounts", len(accounts)),
			zap.Int("at_risk", len(atRisk)))
		fmt.Printf("Wrote %s (%d accounts, %d at risk).\n", exportOut, len(accounts), len(atRisk))
		return nil
	},
}

func writeAccountSheet(sheet *xlsx.Sheet, accounts []model.Account) {
	header := sheet.AddRow()
	for _, h := range []string{"ID", "Name", "Segment", "Industry", "Region", "CSM", "ARR", "Renewal Date", "NPS", "Usage %", "Open Tickets", "Billing Health", "Health Score", "Risk Tier"} {
		header.AddCell().SetString(h)
	}
	for _, a := range accounts {
		row := sheet.AddRow()
		row.AddCell().SetString(a.ID)
		row.AddCell().SetString(a.Name)
		row.AddCell().SetString(a.Segment)
		row.AddCell().SetString(a.Industry)
		row.AddCell().SetString(a.Region)
		row.AddCell().SetString(a.CSM)
		row.AddCell().SetFloat(a.ARR)
		row.AddCell().SetString(a.RenewalDate.Format("2006-01-02"))
		row.AddCell().SetFloat(a.NPS)
		row.AddCell().SetFloat(a.UsagePercent)
		row.AddCell().SetInt(a.OpenTickets)
		row.AddCell().SetFloat(a.BillingHealth)
		row.AddCell().SetFloat(a.HealthScore)
		row.AddCell().SetString(string(a.RiskTier))
	}
}

func writeKPISheet(sheet *xlsx.Sheet, s model.KPISummary) {
	add := func(label string, set func(c *xlsx.Cell)) {
		row := sheet.AddRow()
		row.AddCell().SetString(label)
		set(row.AddCell())
	}
	add("Total accounts", func(c *xlsx.Cell) { c.SetInt(s.TotalAccounts) })
	add("Healthy fraction", func(c *xlsx.Cell) { c.SetFloat(s.HealthyFraction) })
	add("At-risk fraction", func(c *xlsx.Cell) { c.SetFloat(s.AtRiskFraction) })
	add("ARR at risk", func(c *xlsx.Cell) { c.SetFloat(s.TotalARRAtRisk) })
	add("Average NPS", func(c *xlsx.Cell) { c.SetFloat(s.AverageNPS) })
	add("Renewals this quarter", func(c *xlsx.Cell) { c.SetInt(s.RenewalsThisQuarter) })
	add("Computed at", func(c *xlsx.Cell) { c.SetString(s.ComputedAt.Format(time.RFC3339)) })
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "portfolio.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}
