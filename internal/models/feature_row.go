package models

import (
	"fmt"
	"strconv"
)

// ColTargetNext is the supervised target column
const ColTargetNext = "target_next"

// FeatureRow is a panel record extended with engineered features
type FeatureRow struct {
	Record PlayerRecord

	// TargetNext is total_points of the player's next gameweek in the same season
	TargetNext *float64

	// Features holds present engineered values keyed by column name
	Features map[string]float64
}

// NewFeatureRow wraps a record with an empty feature set
func NewFeatureRow(rec PlayerRecord) FeatureRow {
	return FeatureRow{Record: rec, Features: make(map[string]float64)}
}

// MeanFeature names the rolling mean of stat over window gameweeks
func MeanFeature(stat Stat, window int) string {
	return fmt.Sprintf("%s_mean%d", stat, window)
}

// MomentumFeature names the short-minus-long mean difference for a prefix
func MomentumFeature(prefix string, short, long int) string {
	return fmt.Sprintf("%s_momentum_%d_%d", prefix, short, long)
}

// LagFeature names the lag-1 value for a prefix
func LagFeature(prefix string) string {
	return prefix + "_lag1"
}

// PositionIndicator names the one-hot position column
func PositionIndicator(p Position) string {
	return "position_" + string(p)
}

// Feature returns an engineered value and whether it is present
func (f *FeatureRow) Feature(name string) (float64, bool) {
	v, ok := f.Features[name]
	return v, ok
}

// SetFeature stores an engineered value
func (f *FeatureRow) SetFeature(name string, v float64) {
	if f.Features == nil {
		f.Features = make(map[string]float64)
	}
	f.Features[name] = v
}

// Value returns any column of the row formatted for CSV output
func (f *FeatureRow) Value(col string) (string, bool) {
	if col == ColTargetNext {
		if f.TargetNext == nil {
			return "", false
		}
		return FormatFloat(*f.TargetNext), true
	}
	if v, ok := f.Features[col]; ok {
		return FormatFloat(v), true
	}
	return f.Record.Value(col)
}

// Numeric returns the column as a float when it holds a numeric value
func (f *FeatureRow) Numeric(col string) (float64, bool) {
	if col == ColTargetNext {
		if f.TargetNext == nil {
			return 0, false
		}
		return *f.TargetNext, true
	}
	if v, ok := f.Features[col]; ok {
		return v, true
	}
	if s, ok := StatByName(col); ok {
		return f.Record.Stat(s)
	}
	switch col {
	case ColPriceNow:
		return f.Record.PriceFloat()
	case ColWasHome:
		if f.Record.WasHome == nil {
			return 0, false
		}
		if *f.Record.WasHome {
			return 1, true
		}
		return 0, true
	}
	raw, ok := f.Record.Value(col)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
