package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the Visible metric names available for syncing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		names := newVisibleClient().MetricNames(cmd.Context())
		if len(names) == 0 {
			return eris.New("no metrics found in Visible")
		}
		for _, n := range names {
			fmt.Fprintln(os.Stdout, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
