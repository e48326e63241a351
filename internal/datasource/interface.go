// Package datasource fetches raw player data: the FPL JSON API and CSV
// trees on disk.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/fplpanel/internal/models"
)

// PlayerSource fetches season data from a fantasy football API
type PlayerSource interface {
	// FetchBootstrap retrieves players, teams and position types
	FetchBootstrap(ctx context.Context) (*Bootstrap, error)

	// FetchPlayerHistory retrieves one player's per-gameweek history
	FetchPlayerHistory(ctx context.Context, elementID int) ([]HistoryEntry, error)

	// FetchFixtures retrieves every fixture of the season
	FetchFixtures(ctx context.Context) ([]Fixture, error)

	// Name returns the name of the data source
	Name() string
}

// TableSource discovers and reads tabular files
type TableSource interface {
	Discover(root, pattern string) ([]string, error)
	ReadTable(path string) (*models.RawTable, error)
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error to errors.Is and errors.As
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Sentinel causes carried in DataSourceError.Err
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrServerError          = errors.New("server error")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode extracts the DataSourceError code, or ErrCodeUnknown
func ErrorCode(err error) string {
	var dsErr DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code
	}
	return ErrCodeUnknown
}
