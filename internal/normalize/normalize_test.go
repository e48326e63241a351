package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fplpanel/internal/models"
)

func TestCanonicalColumnName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  Total Points ", "total_points"},
		{"Expected-Goals", "expected_goals"},
		{"ICT  Index (%)", "ict_index__"},
		{"gw", "gw"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalColumnName(tt.raw), tt.raw)
	}
}

func TestStandardizeColumnsSynonyms(t *testing.T) {
	cols := StandardizeColumns([]string{"Round", "ID", "Web Name", "Surname", "element_type"})
	assert.Equal(t, []string{"gw", "element", "full_name", "second_name", "position"}, cols)
}

func TestStandardizeColumnsKeepsCanonical(t *testing.T) {
	cols := StandardizeColumns([]string{"gw", "round", "element", "id"})
	assert.Equal(t, []string{"gw", "round", "element", "id"}, cols)
}

func TestStandardizeColumnsFirstSynonymWins(t *testing.T) {
	cols := StandardizeColumns([]string{"event", "round"})
	assert.Equal(t, []string{"event", "gw"}, cols)
}

func TestStandardizeColumnsDuplicates(t *testing.T) {
	cols := StandardizeColumns([]string{"minutes", "Minutes ", ""})
	assert.Equal(t, []string{"minutes", "", ""}, cols)
}

func TestInferIdentifier(t *testing.T) {
	tests := []struct {
		path string
		want int
		ok   bool
	}{
		{"players/123_Salah/gw1.csv", 123, true},
		{"players/Salah-456/gw1.csv", 456, true},
		{"players/Salah/player_789.csv", 789, true},
		{"players/Salah/gw.csv", 0, false},
		{"players/1234567890_Long/data.csv", 0, false},
	}

	for _, tt := range tests {
		got, ok := InferIdentifier(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestInferIdentifierFolderBeforeStem(t *testing.T) {
	got, ok := InferIdentifier("root/77_Saka/gw_3.csv")
	require.True(t, ok)
	assert.Equal(t, 77, got)
}

func TestInferGameweek(t *testing.T) {
	tests := []struct {
		path string
		want int
		ok   bool
	}{
		{"p/gw12.csv", 12, true},
		{"p/GW_05.csv", 5, true},
		{"p/gameweek-3.csv", 3, true},
		{"p/salah_round7.csv", 7, true},
		{"p/Event_2_final.csv", 2, true},
		{"p/gw123.csv", 0, false},
		{"p/gw12x.csv", 0, false},
		{"gw4/stats.csv", 0, false},
		{"p/summary.csv", 0, false},
	}

	for _, tt := range tests {
		got, ok := InferGameweek(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestInferName(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"root/123_Mohamed_Salah/gw1.csv", "Mohamed Salah", true},
		{"root/Kanté-99/gw1.csv", "Kanté", true},
		{"root/123/Bukayo Saka gw2.csv", "Bukayo Saka", true},
		{"root/GW_x/round_1.csv", "", false},
	}

	for _, tt := range tests {
		got, ok := InferName(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestInferSeason(t *testing.T) {
	tests := []struct {
		path string
		want int
		ok   bool
	}{
		{"archive/players2324_weeklydata/1_A/gw1.csv", 2324, true},
		{"archive/2024-25/1_A/gw1.csv", 2425, true},
		{"archive/players_panel_2526.csv", 2526, true},
		{"archive/players/1_A/gw1.csv", 0, false},
		{"data/2324/Salah_7/gw3.csv", 2324, true},
		{"data/2023-24_Salah/gw3.csv", 2324, true},
		{"out/2425.csv", 2425, true},
	}

	for _, tt := range tests {
		got, ok := InferSeason(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestInferSeasonIgnoresPlayerFolderIdentifier(t *testing.T) {
	for _, path := range []string{
		"data/2324_Salah/gw3.csv",
		"data/Salah_308_2324/gw3.csv",
	} {
		_, ok := InferSeason(path)
		assert.False(t, ok, path)
	}

	id, ok := InferIdentifier("data/2324_Salah/gw3.csv")
	require.True(t, ok)
	assert.Equal(t, 2324, id)
}

func TestNormalizeInfersKeysFromPath(t *testing.T) {
	n := NewNormalizer(Options{DefaultSeason: 2526})
	src, err := n.Normalize(&models.RawTable{
		Path:   "root/10_Bukayo_Saka/gw3.csv",
		Header: []string{"Minutes", "Total Points"},
		Rows:   [][]string{{"90", "8"}},
	})
	require.NoError(t, err)
	require.Len(t, src.Records, 1)

	rec := src.Records[0]
	assert.Equal(t, 10, rec.Element)
	assert.Equal(t, 3, rec.Gameweek)
	assert.Equal(t, 2526, rec.Season)
	assert.Equal(t, "Bukayo Saka", rec.FullName)
	assert.Equal(t, []string{"minutes", "total_points", "element", "gw", "full_name", "season"}, src.Columns)
	assert.ElementsMatch(t, []string{"element", "gw", "full_name"}, src.Inferred)
}

func TestNormalizeSingleIDColumn(t *testing.T) {
	n := NewNormalizer(Options{DefaultSeason: 2425})
	src, err := n.Normalize(&models.RawTable{
		Path:   "root/unknown/stats.csv",
		Header: []string{"opta_id", "gw", "minutes"},
		Rows:   [][]string{{"55", "4", "10"}},
	})
	require.NoError(t, err)
	require.Len(t, src.Records, 1)
	assert.Equal(t, 55, src.Records[0].Element)
	assert.Equal(t, 4, src.Records[0].Gameweek)
}

func TestNormalizeComposesFullName(t *testing.T) {
	n := NewNormalizer(Options{DefaultSeason: 2425})
	src, err := n.Normalize(&models.RawTable{
		Path:   "root/panel.csv",
		Header: []string{"element", "round", "first_name", "second_name"},
		Rows:   [][]string{{"1", "2", "  Martin ", "Ødegaard  "}},
	})
	require.NoError(t, err)
	require.Len(t, src.Records, 1)
	assert.Equal(t, "Martin Ødegaard", src.Records[0].FullName)
}

func TestNormalizeRejectsFile(t *testing.T) {
	n := NewNormalizer(Options{DefaultSeason: 2425})

	_, err := n.Normalize(&models.RawTable{
		Path:   "root/Saka/stats.csv",
		Header: []string{"gw", "minutes"},
		Rows:   [][]string{{"1", "90"}},
	})
	assert.True(t, errors.Is(err, ErrMissingIdentifier))

	_, err = n.Normalize(&models.RawTable{
		Path:   "root/7_Saka/stats.csv",
		Header: []string{"minutes"},
		Rows:   [][]string{{"90"}},
	})
	assert.True(t, errors.Is(err, ErrMissingGameweek))

	_, err = NewNormalizer(Options{}).Normalize(&models.RawTable{
		Path:   "root/7_Saka/gw1.csv",
		Header: []string{"minutes"},
		Rows:   [][]string{{"90"}},
	})
	assert.True(t, errors.Is(err, ErrMissingSeason))
}

func TestNormalizeRejectsRows(t *testing.T) {
	n := NewNormalizer(Options{DefaultSeason: 2425})
	src, err := n.Normalize(&models.RawTable{
		Path:   "root/panel.csv",
		Header: []string{"element", "gw", "minutes", "bps"},
		Rows: [][]string{
			{"1", "1", "90", "20"},
			{"x", "2", "90", "20"},
			{"1", "", "90", "20"},
			{"1", "3", "90", "bad"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, src.Records, 2)
	assert.Equal(t, 2, src.RejectedRows)
	assert.Equal(t, 1, src.InvalidCells)

	_, ok := src.Records[1].Stat(models.StatBPS)
	assert.False(t, ok)
}

func TestNormalizeSeasonColumn(t *testing.T) {
	n := NewNormalizer(Options{DefaultSeason: 2526})
	src, err := n.Normalize(&models.RawTable{
		Path:   "root/panel.csv",
		Header: []string{"element", "gw", "season"},
		Rows:   [][]string{{"1", "1", "2023/24"}, {"1", "2", "23/24"}},
	})
	require.NoError(t, err)
	require.Len(t, src.Records, 2)
	assert.Equal(t, 2324, src.Records[0].Season)
	assert.Equal(t, 2324, src.Records[1].Season)
}
