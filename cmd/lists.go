package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var listsListID int64

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "List Affinity lists, or the fields of one list",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Affinity.Token == "" {
			return eris.New("config: affinity.token is required")
		}
		ctx := cmd.Context()
		client := newAffinityClient()

		if listsListID != 0 {
			fields := client.ListFields(ctx, listsListID)
			if len(fields) == 0 {
				return eris.Errorf("no fields found on list %d", listsListID)
			}
			for _, f := range fields {
				fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", f.ID, f.Name, f.ValueType)
			}
			return nil
		}

		lists := client.Lists(ctx)
		if len(lists) == 0 {
			return eris.New("no lists found in Affinity")
		}
		for _, l := range lists {
			fmt.Fprintf(os.Stdout, "%d\t%s\n", l.ID, l.Name)
		}
		return nil
	},
}

func init() {
	listsCmd.Flags().Int64Var(&listsListID, "list-id", 0, "show fields for this list instead of listing lists")
	rootCmd.AddCommand(listsCmd)
}
