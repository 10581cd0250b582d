package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-vc/metricsync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "metricsync",
	Short: "Sync Visible portfolio metrics into Affinity list fields",
	Long:  "Fetches the latest value of a Visible.vc portfolio metric for every company, matches companies to Affinity list entries by web domain, and writes the values into a numeric list field.",
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
