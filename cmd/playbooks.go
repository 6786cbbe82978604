package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/kpi"
	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/store"
	"github.com/sells-group/health-cli/pkg/notion"
)

var (
	playbooksAccountID  string
	playbooksRulesFile  string
	playbooksSyncNotion bool
)

var playbooksCmd = &cobra.Command{
	Use:   "playbooks",
	Short: "Recommend retention playbooks for at-risk accounts",
	Long:  "Runs the playbook rule table over stored accounts and prints the merged, ranked action list per account. Recommendations are idempotent: a rule already represented on an account is not suggested twice.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		engine, err := initEngine(playbooksRulesFile)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		var accounts []model.Account
		if playbooksAccountID != "" {
			a, err := st.GetAccount(ctx, playbooksAccountID)
			if err != nil {
				return eris.Wrap(err, "get account")
			}
			accounts = []model.Account{*a}
		} else {
			accounts, err = st.ListAccounts(ctx, store.AccountFilter{MaxHealth: kpi.AtRiskThreshold})
			if err != nil {
				return eris.Wrap(err, "list accounts")
			}
		}
		if len(accounts) == 0 {
			fmt.Fprintln(os.Stderr, "No at-risk accounts. Run `health-cli score` first.")
			return nil
		}

		var nc notion.Client
		if playbooksSyncNotion {
			nc, err = initNotion()
			if err != nil {
				return err
			}
		}

		for _, a := range accounts {
			items := engine.Recommend(a)
			fmt.Printf("%s (%s) - score %.1f\n", a.Name, a.ID, a.HealthScore)
			printPlaybookTable(os.Stdout, items)
			fmt.Println()

			if err := st.ReplaceActionItems(ctx, a.ID, items); err != nil {
				return eris.Wrap(err, "save action items")
			}

			if nc != nil {
				res, err := notion.ExportPlaybooks(ctx, nc, cfg.Notion.PlaybookDB, a.Name, items)
				if err != nil {
					return eris.Wrapf(err, "notion export for %s", a.ID)
				}
				zap.L().Info("synced playbooks to notion",
					zap.String("account", a.ID),
					zap.Int("created", res.Created),
					zap.Int("updated", res.Updated))
			}
		}
		return nil
	},
}

func printPlaybookTable(w io.Writer, items []model.PlaybookItem) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range items {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\tdue %s\n",
			it.ID, it.Name, it.Status, it.Priority, it.DueDate.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func init() {
	playbooksCmd.Flags().StringVar(&playbooksAccountID, "account", "", "recommend for a single account")
	playbooksCmd.Flags().StringVar(&playbooksRulesFile, "rules", "", "playbook rules YAML file (overrides built-in rules)")
	playbooksCmd.Flags().BoolVar(&playbooksSyncNotion, "sync-notion", false, "upsert recommendations into the Notion playbook database")
	rootCmd.AddCommand(playbooksCmd)
}
