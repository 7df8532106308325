package testutil

import (
	"testing"

	"fic-go/internal/database"
	"fic-go/internal/fic"
)

// NewTestStore creates a new in-memory SQLite record store with the
// schema applied. The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) fic.RecordStore {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	store := database.NewSQLiteStoreFromDB(sqlDB)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
