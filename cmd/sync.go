package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-vc/metricsync/internal/selector"
	"github.com/meridian-vc/metricsync/internal/syncer"
	"github.com/meridian-vc/metricsync/pkg/affinity"
	"github.com/meridian-vc/metricsync/pkg/visible"
)

var (
	syncListID  int64
	syncFieldID string
	syncMetric  string
	syncApply   bool
	syncJSON    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one Visible -> Affinity sync",
	Long:  "Syncs the latest value of a Visible metric into an Affinity list field, matching companies by domain. Runs as a dry run unless --apply is set. List, field, and metric can be given as flags; anything missing is selected interactively.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx := cmd.Context()

		visClient := newVisibleClient()
		affClient := newAffinityClient()
		prompt := selector.NewPrompt(os.Stdin, os.Stderr)

		params, err := resolveParams(ctx, visClient, affClient, prompt)
		if err != nil {
			return err
		}
		params.DryRun = !syncApply

		report, err := syncer.New(visClient, affClient).Run(ctx, params)
		if err != nil {
			return eris.Wrap(err, "sync run")
		}

		zap.L().Info("sync complete",
			zap.String("run_id", report.RunID),
			zap.Int("matched", len(report.Matches)),
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", report.Failed),
			zap.Bool("dry_run", report.DryRun),
		)

		if syncJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Fprint(os.Stdout, report.Summary())
		return nil
	},
}

// resolveParams fills in list, field, and metric from flags, falling back
// to interactive selection for anything not given. No discoverable lists,
// fields, or metrics is a configuration error: there is nothing to sync.
func resolveParams(ctx context.Context, vis visible.Client, aff affinity.Client, sel selector.Selector) (syncer.Params, error) {
	var p syncer.Params

	p.ListID = syncListID
	if p.ListID == 0 {
		lists := aff.Lists(ctx)
		list, err := sel.SelectList(lists)
		if err != nil {
			return p, err
		}
		p.ListID = list.ID
	}

	fields := aff.ListFields(ctx, p.ListID)
	if syncFieldID != "" {
		field, ok := findField(fields, syncFieldID)
		if !ok {
			return p, eris.Errorf("field %q not found on list %d", syncFieldID, p.ListID)
		}
		p.FieldID = field.ID
		p.FieldName = field.Name
	} else {
		field, err := sel.SelectField(fields)
		if err != nil {
			return p, err
		}
		p.FieldID = field.ID
		p.FieldName = field.Name
	}

	p.MetricName = syncMetric
	if p.MetricName == "" {
		names := vis.MetricNames(ctx)
		metric, err := sel.SelectMetric(names)
		if err != nil {
			return p, err
		}
		p.MetricName = metric
	}

	return p, nil
}

func findField(fields []affinity.Field, id string) (affinity.Field, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.ID, id) {
			return f, true
		}
	}
	return affinity.Field{}, false
}

func init() {
	syncCmd.Flags().Int64Var(&syncListID, "list-id", 0, "Affinity list ID (interactive selection when omitted)")
	syncCmd.Flags().StringVar(&syncFieldID, "field-id", "", "Affinity field ID to update (interactive selection when omitted)")
	syncCmd.Flags().StringVar(&syncMetric, "metric", "", "Visible metric name (interactive selection when omitted)")
	syncCmd.Flags().BoolVar(&syncApply, "apply", false, "write updates to Affinity (default is a dry run)")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "print the run report as JSON")
	rootCmd.AddCommand(syncCmd)
}
