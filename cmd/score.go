package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/anomaly"
	"github.com/sells-group/health-cli/internal/model"
	sfpkg "github.com/sells-group/health-cli/pkg/salesforce"
)

var (
	scoreSource    string
	scoreSegment   string
	scoreRulesFile string
	scoreAccountID string
	scorePushCRM   bool
	scoreDryRun    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score accounts, classify risk, and persist derived fields",
	Long:  "Loads accounts, computes composite health scores, classifies renewal risk tiers, flags usage anomalies, recommends playbooks, and saves the results plus a KPI snapshot.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		engine, err := initEngine(scoreRulesFile)
		if err != nil {
			return err
		}

		src, closeSrc, err := initSource(ctx, scoreSource, scoreSegment)
		if err != nil {
			return err
		}
		defer closeSrc()

		accounts, err := src.Accounts(ctx)
		if err != nil {
			return eris.Wrap(err, "load accounts")
		}
		if scoreAccountID != "" {
			accounts = filterByID(accounts, scoreAccountID)
			if len(accounts) == 0 {
				return eris.Errorf("account %s not found", scoreAccountID)
			}
		}

		snap, err := engine.Process(ctx, accounts)
		if err != nil {
			return eris.Wrap(err, "score accounts")
		}

		scored := snap.Accounts()
		for i := range scored {
			scored[i].ActionItems = engine.Recommend(scored[i])
		}

		if scoreAccountID != "" {
			printBreakdown(os.Stdout, scored[0], engine.Breakdown(scored[0]))
		} else {
			printAccountTable(os.Stdout, scored)
		}

		if scoreDryRun {
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if scoreSource != "store" {
			if err := st.UpsertAccounts(ctx, scored); err != nil {
				return eris.Wrap(err, "upsert accounts")
			}
		}
		if err := st.SaveDerived(ctx, scored); err != nil {
			return eris.Wrap(err, "save derived fields")
		}
		for _, a := range scored {
			if err := st.ReplaceActionItems(ctx, a.ID, a.ActionItems); err != nil {
				return eris.Wrap(err, "save action items")
			}
		}

		if scoreAccountID == "" {
			id, err := st.SaveKPISnapshot(ctx, snap.KPIs())
			if err != nil {
				return eris.Wrap(err, "save kpi snapshot")
			}
			zap.L().Info("saved kpi snapshot", zap.String("id", id))
		}

		if scorePushCRM {
			if err := pushScores(cmd, scored); err != nil {
				return err
			}
		}

		flagged := 0
		for _, a := range scored {
			flagged += anomaly.Count(a.UsageSeries)
		}
		zap.L().Info("scored accounts",
			zap.Int("accounts", len(scored)),
			zap.Int("anomalies", flagged))
		fmt.Printf("\nScored %d accounts (%d usage anomalies).\n", len(scored), flagged)
		return nil
	},
}

func pushScores(cmd *cobra.Command, accounts []model.Account) error {
	sfClient, err := initSalesforce()
	if err != nil {
		return err
	}

	updates := healthUpdates(accounts)
	if err := sfpkg.PushHealthScores(cmd.Context(), sfClient, updates); err != nil {
		return eris.Wrap(err, "push health scores")
	}

	zap.L().Info("pushed health scores to crm", zap.Int("count", len(updates)))
	return nil
}

// healthUpdates converts scored accounts into CRM writeback records.
func healthUpdates(accounts []model.Account) []sfpkg.HealthUpdate {
	updates := make([]sfpkg.HealthUpdate, 0, len(accounts))
	for _, a := range accounts {
		updates = append(updates, sfpkg.HealthUpdate{
			AccountID:   a.ID,
			HealthScore: a.HealthScore,
			RiskTier:    string(a.RiskTier),
		})
	}
	return updates
}

func filterByID(accounts []model.Account, id string) []model.Account {
	for _, a := range accounts {
		if a.ID == id {
			return []model.Account{a}
		}
	}
	return nil
}

func init() {
	scoreCmd.Flags().StringVar(&scoreSource, "source", "store", "account source: fixture, store, or crm")
	scoreCmd.Flags().StringVar(&scoreSegment, "segment", "", "only score accounts in this segment")
	scoreCmd.Flags().StringVar(&scoreRulesFile, "rules", "", "playbook rules YAML file (overrides built-in rules)")
	scoreCmd.Flags().StringVar(&scoreAccountID, "account", "", "score a single account and print its component breakdown")
	scoreCmd.Flags().BoolVar(&scorePushCRM, "push-crm", false, "push scores and tiers back to Salesforce")
	scoreCmd.Flags().BoolVar(&scoreDryRun, "dry-run", false, "print results without persisting")
	rootCmd.AddCommand(scoreCmd)
}
