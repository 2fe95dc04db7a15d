package commands

import (
	"fmt"

	"github.com/secondbrain/tracker/internal/config"
	"github.com/secondbrain/tracker/internal/database"
)

// openDB loads configuration and opens the tracker database.
func openDB() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return db, nil
}
