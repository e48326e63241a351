package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/logger"
)

const fplSourceName = "fpl"

// FPLClientConfig configures the FPL API client
type FPLClientConfig struct {
	BaseURL        string
	UserAgent      string
	AuthToken      string
	RequestTimeout time.Duration
	// CacheTTL of 0 disables response caching
	CacheTTL time.Duration
}

// FPLClient implements PlayerSource for the Fantasy Premier League API
type FPLClient struct {
	httpClient *RateLimitedHTTPClient
	cfg        FPLClientConfig
	cache      *cache.Cache
	logger     *logrus.Entry
}

// NewFPLClient creates a new FPL API client
func NewFPLClient(httpClient *RateLimitedHTTPClient, cfg FPLClientConfig, log *logrus.Logger) *FPLClient {
	if log == nil {
		log = logger.Discard()
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	c := &FPLClient{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     log.WithField("component", "fpl_client"),
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// Name returns the name of the data source
func (c *FPLClient) Name() string { return fplSourceName }

// FetchBootstrap retrieves players, teams and position types
func (c *FPLClient) FetchBootstrap(ctx context.Context) (*Bootstrap, error) {
	var b Bootstrap
	if err := c.getJSON(ctx, "bootstrap-static/", &b); err != nil {
		return nil, err
	}
	if len(b.Elements) == 0 {
		return nil, NewDataSourceError(fplSourceName, ErrCodeInvalidData, "bootstrap has no elements", ErrInvalidData)
	}
	return &b, nil
}

// FetchPlayerHistory retrieves one player's per-gameweek history
func (c *FPLClient) FetchPlayerHistory(ctx context.Context, elementID int) ([]HistoryEntry, error) {
	var s ElementSummary
	if err := c.getJSON(ctx, fmt.Sprintf("element-summary/%d/", elementID), &s); err != nil {
		return nil, err
	}
	return s.History, nil
}

// FetchFixtures retrieves every fixture of the season
func (c *FPLClient) FetchFixtures(ctx context.Context) ([]Fixture, error) {
	var f []Fixture
	if err := c.getJSON(ctx, "fixtures/", &f); err != nil {
		return nil, err
	}
	return f, nil
}

// getJSON fetches path under the base URL and decodes it into out. Raw
// bodies are cached per path.
func (c *FPLClient) getJSON(ctx context.Context, path string, out interface{}) error {
	if c.cache != nil {
		if raw, found := c.cache.Get(path); found {
			if err := json.Unmarshal(raw.([]byte), out); err == nil {
				return nil
			}
			c.cache.Delete(path)
		}
	}

	body, err := c.fetch(ctx, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return NewDataSourceError(fplSourceName, ErrCodeInvalidData, "failed to parse "+path, err)
	}
	if c.cache != nil {
		c.cache.SetDefault(path, body)
	}
	return nil
}

func (c *FPLClient) fetch(ctx context.Context, path string) ([]byte, error) {
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, NewDataSourceError(fplSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(fplSourceName, ErrCodeNetworkError, "failed to fetch "+path, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("FPL request completed")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewDataSourceError(fplSourceName, ErrCodeAuthenticationFailed, path, ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewDataSourceError(fplSourceName, ErrCodeNotFound, path, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(fplSourceName, ErrCodeRateLimitExceeded, path, ErrRateLimitExceeded)
	case resp.StatusCode >= 500:
		return nil, NewDataSourceError(fplSourceName, ErrCodeServerError, fmt.Sprintf("%s: status %d", path, resp.StatusCode), ErrServerError)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(fplSourceName, ErrCodeUnknown, fmt.Sprintf("%s: unexpected status %d: %s", path, resp.StatusCode, msg), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(fplSourceName, ErrCodeNetworkError, "failed to read "+path, err)
	}
	return body, nil
}
