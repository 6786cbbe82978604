package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/source"
)

var syncSegment string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull accounts from Salesforce into the store",
	Long:  "Fetches account records and raw health signals from Salesforce and upserts them locally. Derived fields already computed for an account are preserved.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sfClient, err := initSalesforce()
		if err != nil {
			return err
		}

		accounts, err := source.NewCRMSource(sfClient, syncSegment).Accounts(ctx)
		if err != nil {
			return eris.Wrap(err, "fetch crm accounts")
		}
		if len(accounts) == 0 {
			return eris.New("salesforce returned no accounts")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if err := st.UpsertAccounts(ctx, accounts); err != nil {
			return eris.Wrap(err, "upsert accounts")
		}

		zap.L().Info("synced accounts from crm", zap.Int("count", len(accounts)))
		fmt.Printf("Synced %d accounts.\n", len(accounts))
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncSegment, "segment", "", "only sync accounts in this segment")
	rootCmd.AddCommand(syncCmd)
}
