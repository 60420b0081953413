package regions

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobposts-engine/internal/report"
)

func testTable() Table {
	return New(map[string][]string{
		"americas": {"New York, NY", "Toronto", "São Paulo"},
		"emea":     {"London", "Berlin", "Toronto"},
		"apac":     {"Singapore", "Sydney"},
	})
}

func TestMatchesRegionAnyCitySubstring(t *testing.T) {
	tbl := testTable()
	for _, r := range tbl.Names() {
		cities, err := tbl.Cities(r)
		require.NoError(t, err)
		for _, c := range cities {
			for _, loc := range []string{c, "Downtown, " + c, strings.ToUpper(c), strings.ToLower(c) + " (Hybrid)"} {
				ok, err := tbl.MatchesRegion(loc, r)
				require.NoError(t, err)
				assert.True(t, ok, "region=%s loc=%s", r, loc)
			}
		}
	}

	ok, err := tbl.MatchesRegion("Remote - Mars", "apac")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCityNamesAreLiteral(t *testing.T) {
	tbl := New(map[string][]string{"x": {"St. Louis"}})
	ok, err := tbl.MatchesRegion("Stx Louis", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCitiesForUnionDedup(t *testing.T) {
	tbl := testTable()

	ab, err := tbl.CitiesFor([]string{"americas", "emea"})
	require.NoError(t, err)
	ba, err := tbl.CitiesFor([]string{"emea", "americas"})
	require.NoError(t, err)

	assert.Len(t, ab, 5)
	assert.ElementsMatch(t, ab, ba)

	a, _ := tbl.CitiesFor([]string{"americas"})
	e, _ := tbl.CitiesFor([]string{"emea"})
	assert.ElementsMatch(t, ab, dedup(append(a, e...)))
}

func TestInvalidRegionNames(t *testing.T) {
	tbl := testTable()
	for _, name := range []string{"test", "EMEA", "Apac", ""} {
		_, err := tbl.CitiesFor([]string{"americas", name})
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrInvalidRegion), name)
		assert.True(t, report.IsUserError(err), name)

		_, err = tbl.MatchesRegion("London", name)
		assert.ErrorIs(t, err, ErrInvalidRegion)
	}
}

func TestIsKnownLocation(t *testing.T) {
	tbl := testTable()
	assert.True(t, tbl.IsKnownLocation("Sydney, New South Wales, Australia"))
	assert.True(t, tbl.IsKnownLocation("berlin"))
	assert.False(t, tbl.IsKnownLocation("Reykjavik, Iceland"))
}

func TestMatchesAny(t *testing.T) {
	tbl := testTable()
	ok, err := tbl.MatchesAny("Sydney", []string{"emea", "apac"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tbl.MatchesAny("Sydney", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func dedup(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
