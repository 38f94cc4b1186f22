package continent

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyeda/pkg/records"
)

func countries(names ...any) records.Table {
	t := records.New("Country", "Electricity_Consumption")
	for i, n := range names {
		t.Rows = append(t.Rows, records.Record{"Country": n, "Electricity_Consumption": float64(i)})
	}
	return t
}

func names(t records.Table) []any {
	return t.Values("Country")
}

func TestSetSizes(t *testing.T) {
	assert.Equal(t, 26, Europe.Size())
	assert.Equal(t, 34, Asia.Size())
	assert.Equal(t, 0, Continent("Africa").Size())

	eu := Europe.Names()
	assert.Len(t, eu, 26)
	assert.True(t, slices.IsSorted(eu))
	assert.Contains(t, eu, "Cyprus")
	assert.Empty(t, Continent("Africa").Names())
}

func TestParse(t *testing.T) {
	c, ok := Parse(" europe ")
	require.True(t, ok)
	assert.Equal(t, Europe, c)

	c, ok = Parse("ASIA")
	require.True(t, ok)
	assert.Equal(t, Asia, c)

	_, ok = Parse("Oceania")
	assert.False(t, ok)
}

func TestFilter_Membership(t *testing.T) {
	in := countries("Spain", "China", "Cyprus", "Brazil", "Germany", nil, 42, "Japan")

	eu, ok := Filter(in, Europe)
	require.True(t, ok)
	assert.Equal(t, []any{"Spain", "Cyprus", "Germany"}, names(eu))
	assert.Equal(t, in.Columns, eu.Columns)

	as, ok := Filter(in, Asia)
	require.True(t, ok)
	assert.Equal(t, []any{"China", "Cyprus", "Japan"}, names(as))
}

func TestFilter_Idempotent(t *testing.T) {
	in := countries("France", "India", "Macedonia", "Turkey")
	once, _ := Filter(in, Europe)
	twice, _ := Filter(once, Europe)
	assert.Equal(t, once, twice)
}

// An unknown selector is distinct from a valid selection with no matches.
func TestFilter_NoSelectionSentinel(t *testing.T) {
	in := countries("Brazil", "Chile")

	empty, ok := Filter(in, Europe)
	require.True(t, ok)
	assert.Equal(t, 0, empty.Len())
	assert.NotNil(t, empty.Rows)

	_, ok = Filter(in, Continent("Africa"))
	assert.False(t, ok)
}

func TestContains_NormalizesNames(t *testing.T) {
	assert.True(t, Europe.Contains(" Spain"))
	assert.False(t, Europe.Contains("spain"))
	assert.False(t, Asia.Contains("Macedonia [FYROM]"))
}

func TestFilter_MatchesTrimmedNames(t *testing.T) {
	in := countries(" Spain", "Spain\t", "spain", "Cyprus ")
	eu, ok := Filter(in, Europe)
	require.True(t, ok)
	assert.Equal(t, []any{" Spain", "Spain\t", "Cyprus "}, names(eu), "rows keep their original spelling")

	as, ok := Filter(in, Asia)
	require.True(t, ok)
	assert.Equal(t, []any{"Cyprus "}, names(as))
}
