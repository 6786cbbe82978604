package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/store"
)

var (
	accountsSegment string
	accountsTier    string
	accountsBelow   float64
	accountsLimit   int
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List stored accounts",
	Long:  "Lists accounts sorted by ARR descending. Filters narrow by segment, risk tier, or a health-score ceiling.",
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

		filter := store.AccountFilter{
			Segment:  accountsSegment,
			RiskTier: model.RiskTier(accountsTier),
			Limit:    accountsLimit,
		}
		if cmd.Flags().Changed("below") {
			filter.MaxHealth = accountsBelow
		}

		accounts, err := st.ListAccounts(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list accounts")
		}
		if len(accounts) == 0 {
			fmt.Fprintln(os.Stderr, "No accounts found. Run `health-cli seed` or `health-cli sync` first.")
			return nil
		}

		printAccountTable(os.Stdout, accounts)
		return nil
	},
}

var accountsShowCmd = &cobra.Command{
	Use:   "show <account-id>",
	Short: "Show one account in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		a, err := st.GetAccount(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "get account")
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "ID\t%s\n", a.ID)
		fmt.Fprintf(tw, "Name\t%s\n", a.Name)
		fmt.Fprintf(tw, "Segment\t%s / %s / %s\n", a.Segment, a.Industry, a.Region)
		fmt.Fprintf(tw, "CSM\t%s\n", a.CSM)
		if a.ExecutiveContact != "" {
			fmt.Fprintf(tw, "Executive\t%s\n", a.ExecutiveContact)
		}
		fmt.Fprintf(tw, "ARR\t%s\n", formatARR(a.ARR))
		fmt.Fprintf(tw, "Renewal\t%s\n", a.RenewalDate.Format("2006-01-02"))
		fmt.Fprintf(tw, "NPS\t%.0f\n", a.NPS)
		fmt.Fprintf(tw, "Usage\t%.1f%%\n", a.UsagePercent)
		fmt.Fprintf(tw, "Open tickets\t%d\n", a.OpenTickets)
		fmt.Fprintf(tw, "Billing health\t%.1f\n", a.BillingHealth)
		if a.RiskTier != "" {
			fmt.Fprintf(tw, "Health score\t%.1f\n", a.HealthScore)
			fmt.Fprintf(tw, "Risk tier\t%s\n", a.RiskTier)
		}
		_ = tw.Flush()

		if len(a.ActionItems) > 0 {
			fmt.Println("\nPlaybooks:")
			printPlaybookTable(os.Stdout, a.ActionItems)
		}
		if len(a.RecentTickets) > 0 {
			fmt.Println("\nRecent tickets:")
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, t := range a.RecentTickets {
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Title, t.Severity, t.Status, t.CreatedAt.Format("2006-01-02"))
			}
			_ = tw.Flush()
		}
		return nil
	},
}

func init() {
	accountsCmd.Flags().StringVar(&accountsSegment, "segment", "", "filter by segment")
	accountsCmd.Flags().StringVar(&accountsTier, "tier", "", "filter by risk tier (low, medium, high)")
	accountsCmd.Flags().Float64Var(&accountsBelow, "below", 0, "only accounts with health score strictly below this value")
	accountsCmd.Flags().IntVar(&accountsLimit, "limit", 0, "maximum rows (0 = all)")
	accountsCmd.AddCommand(accountsShowCmd)
	rootCmd.AddCommand(accountsCmd)
}
