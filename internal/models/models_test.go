package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeason(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"2324", 2324, false},
		{"23/24", 2324, false},
		{"2023/24", 2324, false},
		{"2023-24", 2324, false},
		{"2023/2024", 2324, false},
		{" 2526 ", 2526, false},
		{"2526.0", 2526, false},
		{"2325", 0, true},
		{"season", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSeason(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		raw  string
		want Position
		ok   bool
	}{
		{"Goalkeeper", Goalkeeper, true},
		{"DEF", Defender, true},
		{" mid ", Midfielder, true},
		{"4", Forward, true},
		{"1", Goalkeeper, true},
		{"5", "", false},
		{"striker", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParsePosition(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestPlayerRecordMissingIsNotZero(t *testing.T) {
	rec := NewPlayerRecord()
	require.NoError(t, rec.SetValue("minutes", "0"))
	require.NoError(t, rec.SetValue("bps", ""))

	v, ok := rec.Value("minutes")
	assert.True(t, ok)
	assert.Equal(t, "0", v)

	_, ok = rec.Value("bps")
	assert.False(t, ok)

	_, ok = rec.Stat(StatBPS)
	assert.False(t, ok)
}

func TestPlayerRecordSetValue(t *testing.T) {
	rec := NewPlayerRecord()
	require.NoError(t, rec.SetValue(ColElement, "12.0"))
	require.NoError(t, rec.SetValue(ColGameweek, "7"))
	require.NoError(t, rec.SetValue(ColSeason, "2024/25"))
	require.NoError(t, rec.SetValue(ColWasHome, "True"))
	require.NoError(t, rec.SetValue(ColPriceNow, "5.5"))
	require.NoError(t, rec.SetValue(ColPosition, "MID"))
	require.NoError(t, rec.SetValue("expected_goals", "0.31"))
	require.NoError(t, rec.SetValue("transfers_in", "1042"))

	assert.Equal(t, 12, rec.Element)
	assert.Equal(t, 7, rec.Gameweek)
	assert.Equal(t, 2425, rec.Season)
	require.NotNil(t, rec.WasHome)
	assert.True(t, *rec.WasHome)
	assert.True(t, rec.Price.Equal(decimal.RequireFromString("5.5")))
	assert.Equal(t, Midfielder, rec.Position)
	assert.Equal(t, "1042", rec.Extra["transfers_in"])

	v, ok := rec.Value("expected_goals")
	assert.True(t, ok)
	assert.Equal(t, "0.31", v)
}

func TestPlayerRecordSetValueInvalid(t *testing.T) {
	rec := NewPlayerRecord()
	err := rec.SetValue(ColGameweek, "three")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidValue))

	err = rec.SetValue(ColGameweek, "3.5")
	assert.Error(t, err)
}

func TestPlayerRecordClone(t *testing.T) {
	rec := NewPlayerRecord()
	rec.Fixture = IntPtr(10)
	rec.SetStat(StatMinutes, 90)
	rec.Extra["note"] = "a"

	clone := rec.Clone()
	*clone.Fixture = 11
	clone.SetStat(StatMinutes, 45)
	clone.Extra["note"] = "b"

	assert.Equal(t, 10, *rec.Fixture)
	v, _ := rec.Stat(StatMinutes)
	assert.Equal(t, 90.0, v)
	assert.Equal(t, "a", rec.Extra["note"])
}

func TestFeatureRowNumeric(t *testing.T) {
	rec := NewPlayerRecord()
	rec.SetStat(StatMinutes, 90)
	rec.WasHome = BoolPtr(false)
	rec.Extra["transfers_in"] = "15"
	rec.Extra["comment"] = "n/a"

	row := NewFeatureRow(rec)
	row.SetFeature(MeanFeature(StatMinutes, 5), 80)

	v, ok := row.Numeric("minutes_mean5")
	assert.True(t, ok)
	assert.Equal(t, 80.0, v)

	v, ok = row.Numeric(ColWasHome)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = row.Numeric("transfers_in")
	assert.True(t, ok)
	assert.Equal(t, 15.0, v)

	_, ok = row.Numeric("comment")
	assert.False(t, ok)

	_, ok = row.Numeric(ColTargetNext)
	assert.False(t, ok)
}

func TestFeatureNames(t *testing.T) {
	assert.Equal(t, "expected_goal_involvements_mean8", MeanFeature(StatExpectedGoalInvolvements, 8))
	assert.Equal(t, "xgi_momentum_5_8", MomentumFeature("xgi", 5, 8))
	assert.Equal(t, "minutes_lag1", LagFeature("minutes"))
	assert.Equal(t, "position_Forward", PositionIndicator(Forward))
}

func TestPipelineRunMetrics(t *testing.T) {
	run := NewPipelineRun(RunKindPipeline)
	require.NoError(t, run.SetMetrics(map[string]float64{"rmse": 2.5}))

	v, ok, err := run.GetMetric("rmse")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	assert.Zero(t, run.Duration())
	run.Finish(RunStatusSucceeded, nil)
	assert.NotNil(t, run.FinishedAt)
	assert.Equal(t, RunStatusSucceeded, run.Status)
}
