package ml

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/config"
)

// NewRegressor builds the regressor named by cfg.Type. features names the
// design matrix columns, which the remote service receives with each call.
func NewRegressor(cfg config.ModelConfig, features []string, log *logrus.Logger) (Regressor, error) {
	switch cfg.Type {
	case "", "local":
		return NewLinearRegressor(cfg.Ridge), nil
	case "remote":
		return NewRemoteRegressor(RemoteConfig{
			BaseURL:    cfg.HTTPAddress,
			ModelType:  "remote",
			AuthToken:  cfg.AuthToken,
			Timeout:    cfg.RequestTimeout(),
			MaxRetries: cfg.MaxRetries,
			Features:   features,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown model type %q", cfg.Type)
	}
}
