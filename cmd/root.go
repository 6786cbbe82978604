package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "health-cli",
	Short: "Customer health scoring and retention toolkit",
	Long:  "Scores customer accounts from raw health signals, classifies renewal risk, flags usage anomalies, rolls up portfolio KPIs, and recommends retention playbooks.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
