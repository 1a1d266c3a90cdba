package database

import (
	"path/filepath"
	"testing"

	"healthtrack/internal/config"
	"healthtrack/internal/model"
)

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		got, err := NewStoreFromConfig(config.DatabaseConfig{Type: "memory"}, "p1", nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() unexpected error: %v", err)
		}
		defer got.Close()

		meds, err := got.List(model.Medications)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(meds) != 0 {
			t.Errorf("len(medications) = %d, want 0 without seeding", len(meds))
		}
	})

	t.Run("sqlite database is seeded once", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "sqlite", DataDir: t.TempDir(), Seed: true}

		first, err := NewStoreFromConfig(cfg, "p1", nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() unexpected error: %v", err)
		}
		if first.Path() != filepath.Join(cfg.DataDir, "p1.db") {
			t.Errorf("Path() = %q", first.Path())
		}
		if _, err := first.Delete(model.Medications, "1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		first.Close()

		second, err := NewStoreFromConfig(cfg, "p1", nil)
		if err != nil {
			t.Fatalf("reopening store: %v", err)
		}
		defer second.Close()

		meds, err := second.List(model.Medications)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(meds) != 2 {
			t.Errorf("len(medications) = %d, want 2 (reopening must not reseed)", len(meds))
		}
	})

	errorCases := []struct {
		name string
		cfg  config.DatabaseConfig
		id   string
	}{
		{"sqlite without data_dir", config.DatabaseConfig{Type: "sqlite"}, "p1"},
		{"sqlite without profile id", config.DatabaseConfig{Type: "sqlite", DataDir: "/tmp"}, ""},
		{"unknown database type", config.DatabaseConfig{Type: "unknown"}, "p1"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStoreFromConfig(tt.cfg, tt.id, nil)
			if err == nil {
				t.Error("NewStoreFromConfig() expected error, got nil")
			}
			if got != nil {
				t.Error("NewStoreFromConfig() should return nil on error")
				got.Close()
			}
		})
	}
}
