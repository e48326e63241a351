package database_test

import (
	"context"
	"errors"
	"log"

	"github.com/yourusername/fplpanel/internal/config"
	"github.com/yourusername/fplpanel/internal/database"
	"github.com/yourusername/fplpanel/internal/repository"
)

// Persistence is optional: a disabled database is not an error, the
// pipeline just runs without repositories.
func ExampleInitialize() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg, nil)
	if errors.Is(err, database.ErrDisabled) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatal(err)
	}

	counts, err := repos.Panel.CountBySeason(ctx)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("panel rows per season: %v", counts)
}
