package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// FPLSourceType is the Fantasy Premier League JSON API
	FPLSourceType SourceType = "fpl"
	// CSVSourceType is a tree of CSV files
	CSVSourceType SourceType = "csv"
)

// Factory creates data sources from configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// HTTPClientConfig derives the API client settings from configuration
func (f *Factory) HTTPClientConfig() HTTPClientConfig {
	hc := DefaultHTTPClientConfig()
	api := f.config.API
	hc.Timeout = api.RequestTimeout()
	hc.MaxRetries = api.MaxRetries
	hc.RateLimit = api.RateLimitPerSecond
	hc.Burst = api.Burst
	return hc
}

// NewPlayerSource creates the API source
func (f *Factory) NewPlayerSource() (PlayerSource, error) {
	if f.config.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is required")
	}
	httpClient := NewRateLimitedHTTPClient(f.HTTPClientConfig(), f.logger)
	return NewFPLClient(httpClient, FPLClientConfig{
		BaseURL:        f.config.API.BaseURL,
		UserAgent:      f.config.API.UserAgent,
		AuthToken:      f.config.API.AuthToken,
		RequestTimeout: f.config.API.RequestTimeout(),
		CacheTTL:       f.config.API.CacheTTL(),
	}, f.logger), nil
}

// NewTableSource creates the CSV source
func (f *Factory) NewTableSource() TableSource {
	return NewCSVSource()
}

// ListAvailableSources returns the source types the configuration can build
func (f *Factory) ListAvailableSources() []SourceType {
	available := []SourceType{CSVSourceType}
	if f.config != nil && f.config.API.BaseURL != "" {
		available = append(available, FPLSourceType)
	}
	return available
}
