package syncer

import (
	"fmt"
	"strings"
	"time"

	"github.com/meridian-vc/metricsync/internal/reconcile"
)

// Report is the outcome of one sync run.
type Report struct {
	RunID      string `json:"run_id"`
	MetricName string `json:"metric_name"`
	ListID     int64  `json:"list_id"`
	FieldID    string `json:"field_id"`
	FieldName  string `json:"field_name"`
	DryRun     bool   `json:"dry_run"`
	// SourceEmpty marks a run that ended early because the metric had no
	// data for any company.
	SourceEmpty bool `json:"source_empty"`

	Matches         []reconcile.MatchResult    `json:"matches"`
	UnmatchedSource []string                   `json:"unmatched_source"`
	UnmatchedCRM    []reconcile.UnmatchedEntry `json:"unmatched_crm"`

	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration_ns"`
}

// maxUnmatchedShown caps the unmatched-entry listing in Summary output.
const maxUnmatchedShown = 10

// Summary renders the report as operator-readable text.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sync run %s\n", r.RunID)
	fmt.Fprintf(&b, "  metric: %s  list: %d  field: %s (%s)\n", r.MetricName, r.ListID, r.FieldName, r.FieldID)

	if r.SourceEmpty {
		b.WriteString("  no source data found for this metric; nothing to do\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  matched: %d\n", len(r.Matches))
	fmt.Fprintf(&b, "  in source but not in CRM: %d\n", len(r.UnmatchedSource))
	fmt.Fprintf(&b, "  in CRM but not in source: %d\n", len(r.UnmatchedCRM))

	if len(r.UnmatchedCRM) > 0 {
		b.WriteString("  CRM entries without source data:\n")
		for i, u := range r.UnmatchedCRM {
			if i == maxUnmatchedShown {
				fmt.Fprintf(&b, "    ... and %d more\n", len(r.UnmatchedCRM)-maxUnmatchedShown)
				break
			}
			domains := u.Domains
			if len(domains) > 2 {
				domains = domains[:2]
			}
			fmt.Fprintf(&b, "    - %s (%s)\n", u.CompanyName, strings.Join(domains, ", "))
		}
	}

	if r.DryRun {
		b.WriteString("  DRY RUN: no updates were made; would update:\n")
		for _, m := range r.Matches {
			fmt.Fprintf(&b, "    - %s -> %.1f\n", m.CompanyName, m.MetricValue)
		}
	} else {
		fmt.Fprintf(&b, "  updated: %d/%d  failed: %d/%d\n",
			r.Succeeded, len(r.Matches), r.Failed, len(r.Matches))
	}

	return b.String()
}
