package testutil

import (
	"testing"

	"healthtrack/internal/database"
	"healthtrack/internal/health"
)

// NewTestStore opens a migrated in-memory store with no seed data. It is
// closed when the test completes.
func NewTestStore(t *testing.T, clock health.Clock) *database.SQLiteStore {
	t.Helper()

	store, err := database.NewSQLiteStore(":memory:", clock)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	return store
}
