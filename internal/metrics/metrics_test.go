package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordRun(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("merge", "succeeded"))

	RecordRun("merge", "succeeded", 1700000000)
	RecordRun("merge", "failed", 1700000100)

	assert.Equal(t, before+1, testutil.ToFloat64(RunsTotal.WithLabelValues("merge", "succeeded")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(LastRunTimestamp.WithLabelValues("merge")),
		"failed runs leave the last success timestamp alone")
}

func TestRecordMerge(t *testing.T) {
	InitRegistry()
	rows := testutil.ToFloat64(RowsMergedTotal)
	dups := testutil.ToFloat64(DuplicatesDroppedTotal)

	RecordMerge(120, 4)

	assert.Equal(t, rows+120, testutil.ToFloat64(RowsMergedTotal))
	assert.Equal(t, dups+4, testutil.ToFloat64(DuplicatesDroppedTotal))
}

func TestRecordAPIRequest(t *testing.T) {
	InitRegistry()
	failures := testutil.ToFloat64(APIFailuresTotal.WithLabelValues("history", "not_found"))

	RecordAPIRequest("history", "")
	RecordAPIRequest("history", "not_found")

	assert.Equal(t, failures+1, testutil.ToFloat64(APIFailuresTotal.WithLabelValues("history", "not_found")))
}

func TestRecordSelection(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name      string
		predicted float64
		remaining float64
	}{
		{name: "full budget spent", predicted: 61.5, remaining: 0},
		{name: "money in the bank", predicted: 48.2, remaining: 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordSelection(tt.predicted, tt.remaining)
			assert.Equal(t, tt.predicted, testutil.ToFloat64(SelectionPredictedPoints))
			assert.Equal(t, tt.remaining, testutil.ToFloat64(SelectionBudgetRemaining))
		})
	}

	assert.NotPanics(t, RecordInfeasibleSelection)
}

func TestHandlerServesRegistry(t *testing.T) {
	InitRegistry()
	ObserveStage("merge", 0.2)
	UpdatePanelPlayers(42)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fplpanel_panel_players 42")
	assert.Contains(t, string(body), `fplpanel_stage_duration_seconds_count{stage="merge"}`)
	// default registry collectors are served too
	assert.Contains(t, string(body), "go_goroutines")
}
