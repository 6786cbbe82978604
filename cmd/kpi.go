package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/kpi"
	"github.com/sells-group/health-cli/internal/store"
)

var kpiHistory int

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Print portfolio KPI rollups",
	Long:  "Recomputes the portfolio KPI summary from stored accounts. --history lists previously saved snapshots instead.",
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

		if kpiHistory > 0 {
			snapshots, err := st.ListKPISnapshots(ctx, kpiHistory)
			if err != nil {
				return eris.Wrap(err, "list kpi snapshots")
			}
			if len(snapshots) == 0 {
				fmt.Fprintln(os.Stderr, "No KPI snapshots saved yet. Run `health-cli score` first.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COMPUTED\tACCOUNTS\tHEALTHY\tAT RISK\tARR AT RISK\tAVG NPS\tRENEWALS (QTR)")
			for _, s := range snapshots {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%.1f\t%d\n",
					s.ComputedAt.Format(time.RFC3339), s.TotalAccounts,
					formatPercent(s.HealthyFraction), formatPercent(s.AtRiskFraction),
					formatARR(s.TotalARRAtRisk), s.AverageNPS, s.RenewalsThisQuarter)
			}
			return tw.Flush()
		}

		accounts, err := st.ListAccounts(ctx, store.AccountFilter{})
		if err != nil {
			return eris.Wrap(err, "list accounts")
		}

		summary := kpi.Aggregate(accounts, time.Now())
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Accounts\t%d\n", summary.TotalAccounts)
		fmt.Fprintf(tw, "Healthy (score >= %d)\t%s\n", int(kpi.HealthyThreshold), formatPercent(summary.HealthyFraction))
		fmt.Fprintf(tw, "At risk (score < %d)\t%s\n", int(kpi.AtRiskThreshold), formatPercent(summary.AtRiskFraction))
		fmt.Fprintf(tw, "ARR at risk\t%s\n", formatARR(summary.TotalARRAtRisk))
		fmt.Fprintf(tw, "Average NPS\t%.1f\n", summary.AverageNPS)
		fmt.Fprintf(tw, "Renewals this quarter\t%d\n", summary.RenewalsThisQuarter)
		return tw.Flush()
	},
}

func init() {
	kpiCmd.Flags().IntVar(&kpiHistory, "history", 0, "list the most recent N saved snapshots")
	rootCmd.AddCommand(kpiCmd)
}
