package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-vc/metricsync/pkg/affinity"
)

func entry(id int64, name string, domains ...string) affinity.ListEntry {
	return affinity.ListEntry{
		ID:     id,
		Entity: affinity.Entity{Name: name, Domains: domains},
	}
}

func TestMatchFirstRecordClaimsSharedDomain(t *testing.T) {
	sourceMap := map[string]float64{"a": 1, "b": 2}
	entries := []affinity.ListEntry{
		entry(1, "First", "a"),
		entry(2, "Second", "a", "b"),
		entry(3, "Third", "c"),
	}

	got := Match(sourceMap, entries)

	// The first entry claims "a"; the second falls through to "b"; the
	// third stays unmatched.
	require.Len(t, got.Matches, 2)
	assert.Equal(t, MatchResult{CompanyName: "First", ListEntryID: 1, Domain: "a", MetricValue: 1}, got.Matches[0])
	assert.Equal(t, MatchResult{CompanyName: "Second", ListEntryID: 2, Domain: "b", MetricValue: 2}, got.Matches[1])

	assert.Empty(t, got.UnmatchedSource)
	require.Len(t, got.UnmatchedCRM, 1)
	assert.Equal(t, "Third", got.UnmatchedCRM[0].CompanyName)
}

func TestMatchFirstDomainWinsWithinEntry(t *testing.T) {
	sourceMap := map[string]float64{"a": 1, "b": 2}
	entries := []affinity.ListEntry{entry(1, "Both", "a", "b")}

	got := Match(sourceMap, entries)

	require.Len(t, got.Matches, 1)
	assert.Equal(t, "a", got.Matches[0].Domain)
	// "b" stays unclaimed because scanning stops at the first match.
	assert.Equal(t, []string{"b"}, got.UnmatchedSource)
}

func TestMatchNormalizesEntryDomains(t *testing.T) {
	sourceMap := map[string]float64{"acme.example": 6.5}
	entries := []affinity.ListEntry{entry(1, "Acme", "https://www.Acme.example/")}

	got := Match(sourceMap, entries)

	require.Len(t, got.Matches, 1)
	assert.Equal(t, "acme.example", got.Matches[0].Domain)
	assert.InDelta(t, 6.5, got.Matches[0].MetricValue, 0.0001)
}

func TestMatchEmptyDomainsExcludedFromBothTallies(t *testing.T) {
	sourceMap := map[string]float64{"a": 1}
	entries := []affinity.ListEntry{
		entry(1, "NoDomains"),
		entry(2, "Matcher", "a"),
	}

	got := Match(sourceMap, entries)

	assert.Len(t, got.Matches, 1)
	assert.Empty(t, got.UnmatchedCRM)
	assert.Empty(t, got.UnmatchedSource)
}

func TestMatchUnmatchedSourceSorted(t *testing.T) {
	sourceMap := map[string]float64{"zeta.example": 1, "alpha.example": 2, "mid.example": 3}

	got := Match(sourceMap, nil)

	assert.Empty(t, got.Matches)
	assert.Equal(t, []string{"alpha.example", "mid.example", "zeta.example"}, got.UnmatchedSource)
}

func TestMatchEmptySourceMap(t *testing.T) {
	entries := []affinity.ListEntry{entry(1, "Acme", "acme.example")}

	got := Match(map[string]float64{}, entries)

	assert.Empty(t, got.Matches)
	assert.Empty(t, got.UnmatchedSource)
	require.Len(t, got.UnmatchedCRM, 1)
	assert.Equal(t, []string{"acme.example"}, got.UnmatchedCRM[0].Domains)
}

func TestMatchEmptyNormalizedDomainNeverMatches(t *testing.T) {
	// A source map can never contain "" (empty normalizations are dropped
	// upstream), and an entry domain of "N/A" must not match anything.
	sourceMap := map[string]float64{"acme.example": 1}
	entries := []affinity.ListEntry{entry(1, "Placeholder", "N/A")}

	got := Match(sourceMap, entries)

	assert.Empty(t, got.Matches)
	require.Len(t, got.UnmatchedCRM, 1)
	assert.Equal(t, []string{"acme.example"}, got.UnmatchedSource)
}
