// Package reconcile joins Visible metric data against Affinity list
// entries by normalized domain.
package reconcile

import (
	"sort"

	"go.uber.org/zap"

	"github.com/meridian-vc/metricsync/internal/domain"
	"github.com/meridian-vc/metricsync/pkg/affinity"
)

// MatchResult is one entry successfully joined to a source value.
type MatchResult struct {
	CompanyName string  `json:"company_name"`
	ListEntryID int64   `json:"list_entry_id"`
	Domain      string  `json:"domain"`
	MetricValue float64 `json:"metric_value"`
}

// UnmatchedEntry is a list entry that had domains but none present in the
// source map.
type UnmatchedEntry struct {
	CompanyName string   `json:"company_name"`
	Domains     []string `json:"domains"`
}

// Summary is the full outcome of one join.
type Summary struct {
	Matches []MatchResult `json:"matches"`
	// UnmatchedSource holds source map keys no entry claimed, sorted.
	UnmatchedSource []string `json:"unmatched_source"`
	// UnmatchedCRM holds entries with at least one domain but no match.
	UnmatchedCRM []UnmatchedEntry `json:"unmatched_crm"`
}

// Match performs a greedy, single-pass, one-to-one join of entries against
// sourceMap. Entries are visited in input order; within an entry, domains
// are tried in listed order and the first normalized domain present in
// sourceMap wins, after which the remaining domains are not considered.
//
// Each source key backs at most one match: once an entry claims a key,
// later entries sharing that domain fall through to their remaining
// domains or end up unmatched. This keeps the sync from writing the same
// source value to two entries and makes the outcome deterministic.
// Entries with no domains at all cannot be classified and appear in
// neither tally.
func Match(sourceMap map[string]float64, entries []affinity.ListEntry) Summary {
	unclaimed := make(map[string]struct{}, len(sourceMap))
	for key := range sourceMap {
		unclaimed[key] = struct{}{}
	}

	var summary Summary
	for _, entry := range entries {
		matched := false
		for _, raw := range entry.Entity.Domains {
			key := domain.Normalize(raw)
			if _, claimed := unclaimed[key]; key == "" || !claimed {
				continue
			}

			value := sourceMap[key]
			summary.Matches = append(summary.Matches, MatchResult{
				CompanyName: entry.Entity.Name,
				ListEntryID: entry.ID,
				Domain:      key,
				MetricValue: value,
			})
			delete(unclaimed, key)
			matched = true
			zap.L().Debug("reconcile: matched",
				zap.String("company", entry.Entity.Name),
				zap.String("domain", key),
				zap.Float64("value", value),
			)
			break
		}

		if !matched && len(entry.Entity.Domains) > 0 {
			summary.UnmatchedCRM = append(summary.UnmatchedCRM, UnmatchedEntry{
				CompanyName: entry.Entity.Name,
				Domains:     entry.Entity.Domains,
			})
		}
	}

	summary.UnmatchedSource = make([]string, 0, len(unclaimed))
	for key := range unclaimed {
		summary.UnmatchedSource = append(summary.UnmatchedSource, key)
	}
	sort.Strings(summary.UnmatchedSource)

	return summary
}
