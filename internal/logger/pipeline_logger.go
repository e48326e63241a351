package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for merge and pipeline stages.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogSourceSkipped logs a source file that contributed no rows.
func (pl *PipelineLogger) LogSourceSkipped(path, reason string) {
	pl.WithFields(logrus.Fields{
		"path":   path,
		"reason": reason,
	}).Warn("Source skipped")
}

// LogSourceMerged logs a normalized source entering the merge.
func (pl *PipelineLogger) LogSourceMerged(path string, rows, rejectedRows, invalidCells int, inferred []string) {
	pl.WithFields(logrus.Fields{
		"path":          path,
		"rows":          rows,
		"rejected_rows": rejectedRows,
		"invalid_cells": invalidCells,
		"inferred":      inferred,
	}).Debug("Source normalized")
}

// LogMergeComplete logs the merged panel.
func (pl *PipelineLogger) LogMergeComplete(output string, sources, rowsIn, duplicates, rowsOut, columns int) {
	pl.WithFields(logrus.Fields{
		"output":     output,
		"sources":    sources,
		"rows_in":    rowsIn,
		"duplicates": duplicates,
		"rows_out":   rowsOut,
		"columns":    columns,
	}).Info("Panel merge completed")
}

// LogIdentityResolved logs player key assignment.
func (pl *PipelineLogger) LogIdentityResolved(input, players, emptyNames, notRetained, collisions, currentSeason int) {
	pl.WithFields(logrus.Fields{
		"input":          input,
		"players":        players,
		"empty_names":    emptyNames,
		"not_retained":   notRetained,
		"collisions":     collisions,
		"current_season": currentSeason,
	}).Info("Player identities resolved")
}

// LogFeaturesBuilt logs the engineered table and its partitions.
func (pl *PipelineLogger) LogFeaturesBuilt(rows, columns, trainRows, evalRows, features int) {
	pl.WithFields(logrus.Fields{
		"rows":       rows,
		"columns":    columns,
		"train_rows": trainRows,
		"eval_rows":  evalRows,
		"features":   features,
	}).Info("Features built")
}

// LogModelTrained logs a fitted model and its evaluation.
func (pl *PipelineLogger) LogModelTrained(modelType string, trainRows int, duration time.Duration, metrics map[string]float64) {
	pl.WithFields(logrus.Fields{
		"model_type":  modelType,
		"train_rows":  trainRows,
		"duration_ms": duration.Milliseconds(),
		"metrics":     metrics,
	}).Info("Model trained")
}

// LogSquadSelected logs a feasible squad.
func (pl *PipelineLogger) LogSquadSelected(players int, totalPrice, remaining string, predicted float64) {
	pl.WithFields(logrus.Fields{
		"players":         players,
		"total_price":     totalPrice,
		"remaining":       remaining,
		"predicted_total": predicted,
	}).Info("Squad selected")
}

// LogSquadInfeasible logs a selection that could not fill the formation.
func (pl *PipelineLogger) LogSquadInfeasible(unmet map[string]int, picked int) {
	pl.WithFields(logrus.Fields{
		"unmet":  unmet,
		"picked": picked,
	}).Warn("Squad selection infeasible")
}
