package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/scoring"
)

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// formatARR renders an ARR figure as grouped dollars, e.g. "$1,250,000".
func formatARR(v float64) string {
	return currencyPrinter.Sprintf("$%v", number.Decimal(v, number.MaxFractionDigits(0)))
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// printAccountTable writes a tab-aligned account listing. Derived columns
// are blank for accounts that have not been scored yet.
func printAccountTable(w io.Writer, accounts []model.Account) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSEGMENT\tARR\tSCORE\tTIER\tRENEWAL\tCSM")
	for _, a := range accounts {
		tier := string(a.RiskTier)
		score := ""
		if a.RiskTier != "" {
			score = fmt.Sprintf("%.1f", a.HealthScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Name, a.Segment, formatARR(a.ARR), score, tier,
			a.RenewalDate.Format("2006-01-02"), a.CSM)
	}
	_ = tw.Flush()
}

func printBreakdown(w io.Writer, a model.Account, b scoring.Breakdown) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%s)\n", a.Name, a.ID)
	fmt.Fprintf(tw, "  health score\t%.1f\n", b.Score)
	for _, c := range []scoring.Component{scoring.ComponentNPS, scoring.ComponentUsage, scoring.ComponentTickets, scoring.ComponentBilling} {
		fmt.Fprintf(tw, "  %s\t%.1f\n", c, b.Components[c])
	}
	_ = tw.Flush()
}
