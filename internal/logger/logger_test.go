package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerWithOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", "production", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Info("hello")
	entry := parseLogOutput(buf)
	require.NotNil(t, entry, "production output is JSON")
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("chatty", "development", buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestPipelineLoggerSourceSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogSourceSkipped("data/2425/Saka_7/gw.csv", "missing gameweek")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, "data/2425/Saka_7/gw.csv", logEntry["path"])
	assert.Equal(t, "missing gameweek", logEntry["reason"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestPipelineLoggerMergeComplete(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogMergeComplete("panel.csv", 3, 120, 4, 116, 40)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(4), logEntry["duplicates"])
	assert.Equal(t, float64(116), logEntry["rows_out"])
}

func TestPipelineLoggerSquadInfeasible(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogSquadInfeasible(map[string]int{"Goalkeeper": 1}, 10)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, map[string]interface{}{"Goalkeeper": float64(1)}, logEntry["unmet"])
	assert.Equal(t, float64(10), logEntry["picked"])
}

func TestPipelineLoggerModelTrained(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogModelTrained("linear", 500, 1500*time.Millisecond, map[string]float64{"rmse": 2.1})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "linear", logEntry["model_type"])
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
}

func TestModelLoggerFit(t *testing.T) {
	log, buf := setupTestLogger()
	modelLogger := NewModelLogger(log)

	modelLogger.LogModelFit("linear", 200, 30, 0.5, map[string]interface{}{"ridge": 1.0})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "model", logEntry["component"])
	assert.Equal(t, float64(30), logEntry["features_count"])
}

func TestAuditLoggerRunFinished(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogRunFinished("run-1", "merge", "failed", 0, 0, time.Second, "no usable input")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run-1", logEntry["run_id"])
	assert.Equal(t, "no usable input", logEntry["error"])
	assert.Equal(t, "error", logEntry["level"])
}

func TestRetryableLoggerFields(t *testing.T) {
	log, buf := setupTestLogger()
	rl := NewRetryableLogger(log.WithField("component", "http"))

	rl.Warn("retrying request", "url", "https://example.test/api", "attempt", 2, 42)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "https://example.test/api", logEntry["url"])
	assert.Equal(t, float64(2), logEntry["attempt"])
	assert.Equal(t, "retrying request", logEntry["msg"])
}

func TestCronLoggerError(t *testing.T) {
	log, buf := setupTestLogger()
	cl := NewCronLogger(log.WithField("component", "scheduler"))

	cl.Error(errors.New("job panicked"), "panic", "entry", 3)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "scheduler", logEntry["component"])
	assert.Equal(t, "job panicked", logEntry["error"])
	assert.Equal(t, float64(3), logEntry["entry"])
	assert.Equal(t, "error", logEntry["level"])
}

func BenchmarkPipelineLoggerSourceMerged(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	log.SetLevel(logrus.DebugLevel)
	pipelineLogger := NewPipelineLogger(log)

	for i := 0; i < b.N; i++ {
		pipelineLogger.LogSourceMerged("data/player_1/gw.csv", 38, 0, 2, []string{"element", "season"})
	}
}
