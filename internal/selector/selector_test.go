package selector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-vc/metricsync/pkg/affinity"
)

func TestSelectList(t *testing.T) {
	var out strings.Builder
	p := NewPrompt(strings.NewReader("2\n"), &out)

	lists := []affinity.List{
		{ID: 1, Name: "Portfolio"},
		{ID: 2, Name: "Pipeline"},
	}
	got, err := p.SelectList(lists)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)

	assert.Contains(t, out.String(), "Portfolio (ID: 1)")
	assert.Contains(t, out.String(), "Pipeline (ID: 2)")
}

func TestSelectListEmpty(t *testing.T) {
	p := NewPrompt(strings.NewReader(""), &strings.Builder{})
	_, err := p.SelectList(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no lists available")
}

func TestSelectListRetriesInvalidInput(t *testing.T) {
	var out strings.Builder
	p := NewPrompt(strings.NewReader("zero\n9\n1\n"), &out)

	got, err := p.SelectList([]affinity.List{{ID: 7, Name: "Only"}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Contains(t, out.String(), "Invalid choice.")
}

func TestSelectListEOF(t *testing.T) {
	p := NewPrompt(strings.NewReader(""), &strings.Builder{})
	_, err := p.SelectList([]affinity.List{{ID: 1, Name: "One"}})
	assert.Error(t, err)
}

func TestSelectFieldSortsForDisplay(t *testing.T) {
	var out strings.Builder
	p := NewPrompt(strings.NewReader("1\n"), &out)

	fields := []affinity.Field{
		{ID: "f-z", Name: "Zeta", ValueType: "number"},
		{ID: "f-a", Name: "alpha"},
	}
	got, err := p.SelectField(fields)
	require.NoError(t, err)

	// Menu is sorted case-insensitively, so choice 1 is "alpha".
	assert.Equal(t, "f-a", got.ID)
	assert.Contains(t, out.String(), "alpha (type: unknown)")
	assert.Contains(t, out.String(), "Zeta (type: number)")

	// The caller's slice is left in its original order.
	assert.Equal(t, "f-z", fields[0].ID)
}

func TestSelectFieldEmpty(t *testing.T) {
	p := NewPrompt(strings.NewReader(""), &strings.Builder{})
	_, err := p.SelectField(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields available")
}

func TestSelectMetric(t *testing.T) {
	p := NewPrompt(strings.NewReader("2\n"), &strings.Builder{})
	got, err := p.SelectMetric([]string{"ARR", "Runway"})
	require.NoError(t, err)
	assert.Equal(t, "Runway", got)
}

func TestSelectMetricEmpty(t *testing.T) {
	p := NewPrompt(strings.NewReader(""), &strings.Builder{})
	_, err := p.SelectMetric(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no metrics available")
}
