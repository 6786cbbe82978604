package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/source"
)

var (
	seedSeed  int64
	seedCount int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with deterministic demo accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		fixtureCfg := cfg.Fixture
		if cmd.Flags().Changed("seed") {
			fixtureCfg.Seed = seedSeed
		}
		if cmd.Flags().Changed("count") {
			fixtureCfg.Count = seedCount
		}

		accounts, err := source.NewFixture(fixtureCfg).Accounts(ctx)
		if err != nil {
			return eris.Wrap(err, "generate fixture accounts")
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

		zap.L().Info("seeded accounts",
			zap.Int("count", len(accounts)),
			zap.Int64("seed", fixtureCfg.Seed))
		fmt.Printf("Seeded %d accounts.\n", len(accounts))
		return nil
	},
}

func init() {
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 42, "fixture RNG seed")
	seedCmd.Flags().IntVar(&seedCount, "count", 50, "number of accounts to generate")
	rootCmd.AddCommand(seedCmd)
}
