package panel

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fplpanel/internal/models"
	"github.com/yourusername/fplpanel/internal/normalize"
)

func rec(element, gw int, minutes float64) models.PlayerRecord {
	r := models.NewPlayerRecord()
	r.Element = element
	r.Season = 2526
	r.Gameweek = gw
	r.SetStat(models.StatMinutes, minutes)
	return r
}

func TestMergeLastDuplicateWins(t *testing.T) {
	first := &normalize.Source{
		Path:    "a.csv",
		Columns: []string{"element", "gw", "minutes"},
		Records: []models.PlayerRecord{rec(1, 3, 90), rec(1, 4, 85)},
	}
	second := &normalize.Source{
		Path:    "b.csv",
		Columns: []string{"element", "gw", "minutes"},
		Records: []models.PlayerRecord{rec(1, 3, 30)},
	}

	p, report, err := NewMerger(Options{}).Merge([]*normalize.Source{first, second})
	require.NoError(t, err)
	require.Len(t, p.Records, 2)
	assert.Equal(t, 1, report.Duplicates)

	assert.Equal(t, 3, p.Records[0].Gameweek)
	minutes, ok := p.Records[0].Stat(models.StatMinutes)
	require.True(t, ok)
	assert.Equal(t, 30.0, minutes)
}

func TestMergeReportsDoubleGameweekFixture(t *testing.T) {
	withFixture := func(r models.PlayerRecord, fixture int) models.PlayerRecord {
		r.Fixture = models.IntPtr(fixture)
		return r
	}
	src := &normalize.Source{
		Columns: []string{"element", "gw", "fixture", "minutes"},
		Records: []models.PlayerRecord{
			withFixture(rec(1, 5, 90), 41),
			withFixture(rec(1, 5, 75), 48),
			withFixture(rec(2, 5, 90), 43),
			withFixture(rec(2, 5, 90), 43),
		},
	}

	p, report, err := NewMerger(Options{}).Merge([]*normalize.Source{src})
	require.NoError(t, err)
	require.Len(t, p.Records, 2)
	assert.Equal(t, 2, report.Duplicates)
	require.Len(t, report.FixtureConflicts, 1, "a repeated identical fixture is a plain duplicate")
	assert.Equal(t, FixtureConflict{Season: 2526, Element: 1, Gameweek: 5, KeptFixture: 48, DroppedFixture: 41},
		report.FixtureConflicts[0])
}

func TestMergeKeyIsUnique(t *testing.T) {
	var sources []*normalize.Source
	for s := 0; s < 3; s++ {
		src := &normalize.Source{Columns: []string{"element", "gw"}}
		for e := 1; e <= 4; e++ {
			for gw := 1; gw <= 3; gw++ {
				src.Records = append(src.Records, rec(e, gw, float64(s)))
			}
		}
		sources = append(sources, src)
	}

	p, _, err := NewMerger(Options{}).Merge(sources)
	require.NoError(t, err)
	assert.Len(t, p.Records, 12)

	seen := make(map[[3]int]bool)
	for _, r := range p.Records {
		k := [3]int{r.Element, r.Season, r.Gameweek}
		assert.False(t, seen[k])
		seen[k] = true
	}
}

func TestMergeSeasonsAreDistinct(t *testing.T) {
	a := rec(1, 1, 90)
	b := rec(1, 1, 45)
	b.Season = 2425

	p, report, err := NewMerger(Options{}).Merge([]*normalize.Source{
		{Columns: []string{"element", "gw"}, Records: []models.PlayerRecord{a, b}},
	})
	require.NoError(t, err)
	assert.Len(t, p.Records, 2)
	assert.Zero(t, report.Duplicates)
}

func TestMergeColumnUnionAndOrder(t *testing.T) {
	a := rec(2, 2, 90)
	b := rec(1, 5, 90)
	b.Extra["transfers_in"] = "100"
	c := rec(1, 1, 90)

	p, _, err := NewMerger(Options{}).Merge([]*normalize.Source{
		{Columns: []string{"element", "gw", "minutes"}, Records: []models.PlayerRecord{a}},
		{Columns: []string{"gw", "element", "transfers_in"}, Records: []models.PlayerRecord{b, c}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"element", "gw", "minutes", "transfers_in"}, p.Columns)

	got := make([][2]int, 0, len(p.Records))
	for _, r := range p.Records {
		got = append(got, [2]int{r.Element, r.Gameweek})
	}
	assert.Equal(t, [][2]int{{1, 1}, {1, 5}, {2, 2}}, got)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, p.Columns, p.Rows()))
	assert.Equal(t, "element,gw,minutes,transfers_in\n1,1,90,\n1,5,90,100\n2,2,90,\n", buf.String())
}

func TestMergeTargetSchema(t *testing.T) {
	a := rec(1, 1, 90)
	a.Extra["transfers_in"] = "100"

	p, report, err := NewMerger(Options{TargetSchema: []string{"gw", "element", "bps", "full_name"}}).Merge([]*normalize.Source{
		{Columns: []string{"element", "gw", "minutes", "transfers_in"}, Records: []models.PlayerRecord{a}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gw", "element", "bps", "full_name"}, p.Columns)
	assert.Equal(t, []string{"bps", "full_name"}, report.ColumnsAdded)
	assert.NotContains(t, p.Records[0].Extra, "transfers_in")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, p.Columns, p.Rows()))
	assert.Equal(t, "gw,element,bps,full_name\n1,1,,\n", buf.String())
}

func TestMergeNoUsableInput(t *testing.T) {
	_, _, err := NewMerger(Options{}).Merge(nil)
	assert.True(t, errors.Is(err, ErrNoUsableInput))

	_, _, err = NewMerger(Options{}).Merge([]*normalize.Source{{Columns: []string{"element", "gw"}}})
	assert.True(t, errors.Is(err, ErrNoUsableInput))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "panel.csv")

	p := &Panel{Columns: []string{"element", "gw"}, Records: []models.PlayerRecord{rec(3, 1, 0)}}
	require.NoError(t, p.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "element,gw\n3,1\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
