package database

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/config"
)

// ErrDisabled is returned by Initialize when persistence is switched off
var ErrDisabled = errors.New("database disabled")

// Initialize creates a connection pool and makes sure the schema exists
func Initialize(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*DB, error) {
	if !cfg.Database.Enabled {
		return nil, ErrDisabled
	}

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Name,
		}).Info("Database initialized")
	}
	return db, nil
}
