package database

import (
	"fmt"
	"os"
	"path/filepath"

	"fic-go/internal/config"
	"fic-go/internal/database/migrations"
	"fic-go/internal/fic"
)

// NewStoreFromConfig creates a RecordStore based on the database config type.
// SQLite stores are migrated to the latest schema on open.
func NewStoreFromConfig(cfg config.DatabaseConfig) (fic.RecordStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite database requires data_dir to be set")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		store, err := NewSQLiteStore(filepath.Join(cfg.DataDir, "fic.db"))
		if err != nil {
			return nil, err
		}
		if err := migrations.MigrateUp(store.db); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
