package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-vc/metricsync/pkg/affinity"
	"github.com/meridian-vc/metricsync/pkg/visible"
)

type fakeVisible struct {
	names []string
}

func (f *fakeVisible) PortfolioCompanies(context.Context) []visible.Company { return nil }
func (f *fakeVisible) MetricNames(context.Context) []string { return f.names }
func (f *fakeVisible) CompanyMetrics(context.Context, string) []visible.Metric { return nil }
func (f *fakeVisible) LatestDataPoint(context.Context, string) visible.DataPoint {
	return visible.DataPoint{}
}
func (f *fakeVisible) WebsitePropertyID(context.Context) string { return "" }
func (f *fakeVisible) CompanyWebsite(context.Context, string, string) string { return "" }
func (f *fakeVisible) FetchMetricMap(context.Context, string) map[string]float64 {
	return nil
}

type fakeAffinity struct {
	lists  []affinity.List
	fields []affinity.Field
}

func (f *fakeAffinity) Lists(context.Context) []affinity.List { return f.lists }
func (f *fakeAffinity) ListFields(context.Context, int64) []affinity.Field { return f.fields }
func (f *fakeAffinity) ListEntries(context.Context, int64) []affinity.ListEntry {
	return nil
}
func (f *fakeAffinity) UpdateNumericField(context.Context, int64, int64, string, float64) bool {
	return true
}

type scriptedSelector struct {
	list   affinity.List
	field  affinity.Field
	metric string
}

func (s *scriptedSelector) SelectList([]affinity.List) (affinity.List, error) { return s.list, nil }
func (s *scriptedSelector) SelectField([]affinity.Field) (affinity.Field, error) { return s.field, nil }
func (s *scriptedSelector) SelectMetric([]string) (string, error) { return s.metric, nil }

func setSyncFlags(t *testing.T, listID int64, fieldID, metric string) {
	t.Helper()
	origList, origField, origMetric := syncListID, syncFieldID, syncMetric
	t.Cleanup(func() {
		syncListID, syncFieldID, syncMetric = origList, origField, origMetric
	})
	syncListID, syncFieldID, syncMetric = listID, fieldID, metric
}

func TestResolveParamsFromFlags(t *testing.T) {
	setSyncFlags(t, 5, "field-1", "Runway")

	aff := &fakeAffinity{fields: []affinity.Field{
		{ID: "field-1", Name: "Runway (months)", ValueType: "number"},
	}}

	p, err := resolveParams(context.Background(), &fakeVisible{}, aff, &scriptedSelector{})
	require.NoError(t, err)

	assert.Equal(t, int64(5), p.ListID)
	assert.Equal(t, "field-1", p.FieldID)
	assert.Equal(t, "Runway (months)", p.FieldName)
	assert.Equal(t, "Runway", p.MetricName)
}

func TestResolveParamsUnknownFieldID(t *testing.T) {
	setSyncFlags(t, 5, "nope", "Runway")

	aff := &fakeAffinity{fields: []affinity.Field{{ID: "field-1", Name: "Runway"}}}

	_, err := resolveParams(context.Background(), &fakeVisible{}, aff, &scriptedSelector{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestResolveParamsInteractiveFallback(t *testing.T) {
	setSyncFlags(t, 0, "", "")

	aff := &fakeAffinity{
		lists:  []affinity.List{{ID: 9, Name: "Portfolio"}},
		fields: []affinity.Field{{ID: "field-2", Name: "Burn"}},
	}
	sel := &scriptedSelector{
		list:   affinity.List{ID: 9, Name: "Portfolio"},
		field:  affinity.Field{ID: "field-2", Name: "Burn"},
		metric: "Burn Rate",
	}

	p, err := resolveParams(context.Background(), &fakeVisible{names: []string{"Burn Rate"}}, aff, sel)
	require.NoError(t, err)

	assert.Equal(t, int64(9), p.ListID)
	assert.Equal(t, "field-2", p.FieldID)
	assert.Equal(t, "Burn", p.FieldName)
	assert.Equal(t, "Burn Rate", p.MetricName)
}

func TestFindFieldCaseInsensitive(t *testing.T) {
	fields := []affinity.Field{{ID: "Field-1", Name: "Runway"}}

	got, ok := findField(fields, "field-1")
	assert.True(t, ok)
	assert.Equal(t, "Runway", got.Name)

	_, ok = findField(fields, "field-2")
	assert.False(t, ok)
}
