// Package syncer sequences a full Visible -> Affinity sync run: fetch,
// reconcile, then apply (or simulate) field updates.
package syncer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-vc/metricsync/internal/reconcile"
	"github.com/meridian-vc/metricsync/pkg/affinity"
	"github.com/meridian-vc/metricsync/pkg/visible"
)

// Params identifies what to sync and how.
type Params struct {
	ListID     int64
	FieldID    string
	FieldName  string
	MetricName string
	// DryRun computes and reports intended updates without writing.
	DryRun bool
}

// Syncer runs the pipeline against one Visible portfolio and one Affinity
// workspace.
type Syncer struct {
	visible  visible.Client
	affinity affinity.Client
}

// New creates a Syncer.
func New(v visible.Client, a affinity.Client) *Syncer {
	return &Syncer{visible: v, affinity: a}
}

// Run executes one sync. Updates are applied strictly sequentially so the
// per-entry success/failure accounting stays simple and the log order
// deterministic; nothing is retried.
func (s *Syncer) Run(ctx context.Context, p Params) (*Report, error) {
	if p.ListID == 0 || p.FieldID == "" || p.MetricName == "" {
		return nil, eris.New("syncer: list, field, and metric are required")
	}

	start := time.Now()
	log := zap.L().With(
		zap.String("metric", p.MetricName),
		zap.Int64("list_id", p.ListID),
		zap.String("field", p.FieldName),
		zap.Bool("dry_run", p.DryRun),
	)
	log.Info("syncer: starting run")

	report := &Report{
		RunID:      uuid.NewString(),
		MetricName: p.MetricName,
		ListID:     p.ListID,
		FieldID:    p.FieldID,
		FieldName:  p.FieldName,
		DryRun:     p.DryRun,
	}

	sourceMap := s.visible.FetchMetricMap(ctx, p.MetricName)
	if len(sourceMap) == 0 {
		log.Warn("syncer: no source data for metric, nothing to sync")
		report.SourceEmpty = true
		report.Duration = time.Since(start)
		return report, nil
	}

	entries := s.affinity.ListEntries(ctx, p.ListID)
	log.Info("syncer: list entries retrieved", zap.Int("count", len(entries)))

	summary := reconcile.Match(sourceMap, entries)
	report.Matches = summary.Matches
	report.UnmatchedSource = summary.UnmatchedSource
	report.UnmatchedCRM = summary.UnmatchedCRM

	log.Info("syncer: matching complete",
		zap.Int("matched", len(summary.Matches)),
		zap.Int("unmatched_source", len(summary.UnmatchedSource)),
		zap.Int("unmatched_crm", len(summary.UnmatchedCRM)),
	)

	if p.DryRun {
		log.Info("syncer: dry run, skipping updates", zap.Int("would_update", len(summary.Matches)))
		report.Duration = time.Since(start)
		return report, nil
	}

	for _, m := range summary.Matches {
		ok := s.affinity.UpdateNumericField(ctx, p.ListID, m.ListEntryID, p.FieldID, m.MetricValue)
		if ok {
			report.Succeeded++
			log.Info("syncer: updated",
				zap.String("company", m.CompanyName),
				zap.Float64("value", m.MetricValue),
			)
		} else {
			report.Failed++
			log.Warn("syncer: update failed", zap.String("company", m.CompanyName))
		}
	}

	log.Info("syncer: run complete",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)
	report.Duration = time.Since(start)
	return report, nil
}
