package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fplpanel/internal/config"
)

const bootstrapJSON = `{
  "elements": [
    {"id": 7, "first_name": "Bukayo", "second_name": "Saka", "web_name": "Saka", "team": 1,
     "element_type": 3, "now_cost": 101, "points_per_game": "6.2"}
  ],
  "teams": [{"id": 1, "name": "Arsenal", "short_name": "ARS"}, {"id": 2, "name": "Chelsea", "short_name": "CHE"}],
  "element_types": [{"id": 3, "singular_name": "Midfielder", "singular_name_short": "MID"}]
}`

const historyJSON = `{"history": [
  {"element": 7, "fixture": 11, "opponent_team": 2, "total_points": 9, "was_home": true, "round": 1,
   "minutes": 90, "bps": 31, "expected_goals": "0.45", "expected_goal_involvements": "0.81",
   "ict_index": "12.3", "creativity": 40.1, "team_h_score": 2, "team_a_score": null}
]}`

const fixturesJSON = `[{"id": 11, "event": 1, "team_h": 1, "team_a": 2, "finished": true}]`

func testHTTPClient(maxRetries, breakerMax int) *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = maxRetries
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = breakerMax
	cfg.CircuitCooldown = 0
	return NewRateLimitedHTTPClient(cfg, nil)
}

func fplServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bootstrap-static/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "fplpanel-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(bootstrapJSON))
	})
	mux.HandleFunc("/api/element-summary/7/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(historyJSON))
	})
	mux.HandleFunc("/api/fixtures/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(fixturesJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFPLClientFetches(t *testing.T) {
	srv, _ := fplServer(t)
	c := NewFPLClient(testHTTPClient(0, 5), FPLClientConfig{
		BaseURL:        srv.URL + "/api",
		UserAgent:      "fplpanel-test",
		RequestTimeout: time.Second,
	}, nil)

	b, err := c.FetchBootstrap(context.Background())
	require.NoError(t, err)
	require.Len(t, b.Elements, 1)
	assert.Equal(t, 101, b.Elements[0].NowCost)
	assert.Equal(t, 6.2, b.Elements[0].PointsPerGame.Float64())
	assert.Equal(t, "Arsenal", b.Teams[0].Name)

	h, err := c.FetchPlayerHistory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, 0.45, h[0].ExpectedGoals.Float64())
	assert.Equal(t, 40.1, h[0].Creativity.Float64())
	require.NotNil(t, h[0].TeamHScore)
	assert.Nil(t, h[0].TeamAScore)
	assert.True(t, h[0].WasHome)

	f, err := c.FetchFixtures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f[0].TeamA)
}

func TestFPLClientCachesResponses(t *testing.T) {
	srv, hits := fplServer(t)
	c := NewFPLClient(testHTTPClient(0, 5), FPLClientConfig{
		BaseURL:   srv.URL + "/api/",
		UserAgent: "fplpanel-test",
		CacheTTL:  time.Minute,
	}, nil)

	for i := 0; i < 3; i++ {
		_, err := c.FetchBootstrap(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestFPLClientStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
		wantErr  error
	}{
		{"not found", http.StatusNotFound, ErrCodeNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrCodeRateLimitExceeded, ErrRateLimitExceeded},
		{"unauthorized", http.StatusUnauthorized, ErrCodeAuthenticationFailed, ErrAuthenticationFailed},
		{"server error", http.StatusBadGateway, ErrCodeServerError, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewFPLClient(testHTTPClient(0, 5), FPLClientConfig{BaseURL: srv.URL}, nil)
			_, err := c.FetchPlayerHistory(context.Background(), 99)
			require.Error(t, err)

			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, tt.wantCode, dsErr.Code)
			assert.Equal(t, "fpl", dsErr.Source)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Equal(t, tt.wantCode, ErrorCode(err))
		})
	}
}

func TestFPLClientRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewFPLClient(testHTTPClient(0, 5), FPLClientConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 20 * time.Millisecond,
	}, nil)
	_, err := c.FetchFixtures(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrCodeNetworkError, ErrorCode(err))
}

func TestFPLClientInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"elements": "nope"}`))
	}))
	defer srv.Close()

	c := NewFPLClient(testHTTPClient(0, 5), FPLClientConfig{BaseURL: srv.URL}, nil)
	_, err := c.FetchBootstrap(context.Background())
	assert.Equal(t, ErrCodeInvalidData, ErrorCode(err))
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := testHTTPClient(3, 5).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPClientCircuitBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testHTTPClient(0, 2)
	for i := 0; i < 2; i++ {
		resp, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	_, err := c.Get(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestCSVDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2425", "Bukayo_Saka_7", "gw.csv"), []byte("gw\n1\n"))
	writeFile(t, filepath.Join(root, "2425", "Cole_Palmer_12", "gw.csv"), []byte("gw\n1\n"))
	writeFile(t, filepath.Join(root, "2425", "notes.txt"), []byte("x"))
	writeFile(t, filepath.Join(root, "top.csv"), []byte("gw\n1\n"))

	src := NewCSVSource()
	paths, err := src.Discover(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "2425", "Bukayo_Saka_7", "gw.csv"),
		filepath.Join(root, "2425", "Cole_Palmer_12", "gw.csv"),
		filepath.Join(root, "top.csv"),
	}, paths)

	paths, err = src.Discover(root, "2425/*/gw.csv")
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	_, err = src.Discover(filepath.Join(root, "missing"), "")
	assert.Equal(t, ErrCodeNotFound, ErrorCode(err))

	_, err = src.Discover(root, "[")
	assert.Equal(t, ErrCodeInvalidData, ErrorCode(err))
}

func TestCSVReadTableLatin1AndBOM(t *testing.T) {
	root := t.TempDir()
	latin := filepath.Join(root, "latin.csv")
	writeFile(t, latin, []byte("first_name,minutes\nJos\xe9,90\n\n,\n"))
	bom := filepath.Join(root, "bom.csv")
	writeFile(t, bom, append([]byte{0xEF, 0xBB, 0xBF}, []byte("element,gw\n7,1,extra\n")...))

	src := NewCSVSource()
	table, err := src.ReadTable(latin)
	require.NoError(t, err)
	assert.Equal(t, EncodingLatin1, table.Encoding)
	assert.Equal(t, [][]string{{"José", "90"}}, table.Rows)

	table, err = src.ReadTable(bom)
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, table.Encoding)
	assert.Equal(t, []string{"element", "gw"}, table.Header)
	assert.Equal(t, []string{"7", "1", "extra"}, table.Rows[0], "ragged rows are kept")
}

func TestCSVReadTableEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	writeFile(t, path, nil)

	_, err := NewCSVSource().ReadTable(path)
	assert.Equal(t, ErrCodeInvalidData, ErrorCode(err))

	_, err = NewCSVSource().ReadSchema(path)
	assert.Error(t, err)
}

func TestFactory(t *testing.T) {
	cfg := &config.Config{API: config.APIConfig{
		BaseURL:               "https://fantasy.premierleague.com/api/",
		RequestTimeoutSeconds: 5,
		RateLimitPerSecond:    2,
		Burst:                 1,
		MaxRetries:            1,
	}}
	f := NewFactory(cfg, nil)

	hc := f.HTTPClientConfig()
	assert.Equal(t, 5*time.Second, hc.Timeout)
	assert.Equal(t, 1, hc.MaxRetries)

	src, err := f.NewPlayerSource()
	require.NoError(t, err)
	assert.Equal(t, "fpl", src.Name())
	assert.ElementsMatch(t, []SourceType{CSVSourceType, FPLSourceType}, f.ListAvailableSources())
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{`1.5`, 1.5, true},
		{`0`, 0, true},
		{`"0.45"`, 0.45, true},
		{`null`, 0, false},
		{`""`, 0, false},
	}
	for _, tt := range tests {
		var f FlexFloat
		require.NoError(t, json.Unmarshal([]byte(tt.in), &f), tt.in)
		v, ok := f.Get()
		assert.Equal(t, tt.want, v, tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
	}

	var f FlexFloat
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &f))

	var h HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(`{"element":7,"total_points":3}`), &h))
	assert.True(t, h.TotalPoints.Valid)
	assert.False(t, h.BPS.Valid, "absent fields are not valid")
}
