package service

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fplpanel/internal/datasource"
	"github.com/yourusername/fplpanel/internal/models"
	"github.com/yourusername/fplpanel/internal/panel"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func playerTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2425", "Bukayo_Saka_7", "gw.csv"),
		"round,minutes,total_points\n2,90,5\n1,85,9\n")
	writeFile(t, filepath.Join(root, "2425", "Cole_Palmer_12", "gw.csv"),
		"Round,Minutes,Total Points,xP\n1,90,12,6.1\n1,90,13,6.1\n")
	writeFile(t, filepath.Join(root, "2425", "notes", "summary.csv"), "a,b\n1,2\n")
	writeFile(t, filepath.Join(root, "2425", "empty", "gw_1.csv"), "")
	return root
}

func TestMergeServiceMergesTree(t *testing.T) {
	root := playerTree(t)
	out := filepath.Join(t.TempDir(), "out", "merged.csv")

	svc := NewMergeService(datasource.NewCSVSource(), nil, nil)
	res, err := svc.Merge(context.Background(), MergeOptions{Root: root, Output: out})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Files)
	assert.Len(t, res.Skipped, 2)
	assert.Equal(t, 4, res.Report.RowsIn)
	assert.Equal(t, 1, res.Report.Duplicates)
	assert.Equal(t, 3, res.Report.RowsOut)

	// ordered by (element, gw); Palmer's duplicate gw1 keeps the last row
	recs := res.Panel.Records
	assert.Equal(t, [][2]int{{7, 1}, {7, 2}, {12, 1}}, [][2]int{
		{recs[0].Element, recs[0].Gameweek}, {recs[1].Element, recs[1].Gameweek}, {recs[2].Element, recs[2].Gameweek},
	})
	pts, _ := recs[2].Stat(models.StatTotalPoints)
	assert.Equal(t, 13.0, pts)
	assert.Equal(t, "Cole Palmer", recs[2].FullName)
	assert.Equal(t, 2425, recs[0].Season)

	rows := readCSV(t, out)
	require.Len(t, rows, 4)
	assert.Contains(t, rows[0], "xp")
	xp := indexOf(rows[0], "xp")
	assert.Equal(t, "", rows[1][xp], "Saka has no xp column and gets the missing marker")
}

func TestMergeServiceTargetSchema(t *testing.T) {
	root := playerTree(t)
	schema := filepath.Join(t.TempDir(), "schema.csv")
	writeFile(t, schema, "Element,GW,Season,Full Name,Minutes,Bonus\n")
	out := filepath.Join(t.TempDir(), "merged.csv")

	svc := NewMergeService(datasource.NewCSVSource(), nil, nil)
	res, err := svc.Merge(context.Background(), MergeOptions{Root: root, Output: out, TargetSchema: schema})
	require.NoError(t, err)
	assert.Equal(t, []string{"bonus"}, res.Report.ColumnsAdded)

	rows := readCSV(t, out)
	assert.Equal(t, []string{"element", "gw", "season", "full_name", "minutes", "bonus"}, rows[0])
}

func TestMergeServiceNoUsableInput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes", "summary.csv"), "a,b\n1,2\n")
	out := filepath.Join(t.TempDir(), "merged.csv")

	runs := newFakeRunRepo()
	svc := NewMergeService(datasource.NewCSVSource(), NewRunTracker(runs, nil), nil)
	_, err := svc.Merge(context.Background(), MergeOptions{Root: root, Output: out, Season: 2425})
	require.Error(t, err)
	assert.True(t, errors.Is(err, panel.ErrNoUsableInput))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output file on failure")

	latest, err := runs.GetLatest(context.Background(), models.RunKindMerge)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, latest.Status)
	assert.NotEmpty(t, latest.Error)
}

func TestMergeServiceMissingRoot(t *testing.T) {
	svc := NewMergeService(datasource.NewCSVSource(), nil, nil)
	_, err := svc.Merge(context.Background(), MergeOptions{Root: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

func TestMergeServiceWarnsOnFixtureConflict(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2425", "Bukayo_Saka_7", "gw.csv"),
		"round,fixture,minutes\n24,231,90\n24,236,64\n")

	log, hook := test.NewNullLogger()
	res, err := NewMergeService(datasource.NewCSVSource(), nil, log).Merge(context.Background(), MergeOptions{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Report.Duplicates)
	require.Len(t, res.Report.FixtureConflicts, 1)
	assert.Equal(t, 236, res.Report.FixtureConflicts[0].KeptFixture)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["dropped_fixture"] == 231 {
			warned = true
		}
	}
	assert.True(t, warned, "the dropped fixture is logged")
}
