package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/anomaly"
	"github.com/sells-group/health-cli/internal/store"
)

var anomaliesVerbose bool

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "List accounts with flagged usage anomalies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		detector := anomaly.NewDetector(cfg.Anomaly)

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

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tANOMALIES\tLATEST USAGE")
		found := 0
		for _, a := range accounts {
			series := detector.Detect(a.UsageSeries)
			n := anomaly.Count(series)
			if n == 0 {
				continue
			}
			found++

			latest := ""
			if len(series) > 0 {
				latest = fmt.Sprintf("%.1f%%", series[len(series)-1].Value)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.ID, a.Name, n, latest)

			if anomaliesVerbose {
				for _, s := range series {
					if s.Anomaly {
						fmt.Fprintf(tw, "\t  %s\t%.1f%%\t\n", s.Date.Format("2006-01-02"), s.Value)
					}
				}
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if found == 0 {
			fmt.Fprintln(os.Stderr, "No usage anomalies detected.")
		}
		return nil
	},
}

func init() {
	anomaliesCmd.Flags().BoolVarP(&anomaliesVerbose, "verbose", "v", false, "list each flagged sample")
	rootCmd.AddCommand(anomaliesCmd)
}
