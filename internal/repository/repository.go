package repository

import (
	"fmt"

	"github.com/yourusername/fplpanel/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Panel PanelRepository
	Run   RunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Panel: NewPostgresPanelRepository(db),
		Run:   NewPostgresRunRepository(db),
	}, nil
}
