package database

import (
	"fmt"
	"os"
	"path/filepath"

	"healthtrack/internal/config"
	"healthtrack/internal/health"
)

// NewStoreFromConfig opens the store selected by cfg.Type and brings its
// schema up to date. A freshly created store is seeded with sample data
// when cfg.Seed is set.
func NewStoreFromConfig(cfg config.DatabaseConfig, profileID string, clock health.Clock) (*SQLiteStore, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if profileID == "" {
			return nil, fmt.Errorf("profile_id required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, profileID+".db")
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	store, err := NewSQLiteStore(path, clock)
	if err != nil {
		return nil, err
	}
	fresh, err := store.Migrate()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	if fresh && cfg.Seed {
		if err := Seed(store); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}
