package database

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"healthtrack/internal/health"
)

//go:embed seed.yaml
var seedData []byte

// Seed writes the sample medications, appointments, vitals, contacts,
// profile and settings into store. Only the collections and documents in
// the sample are replaced.
func Seed(store health.Store) error {
	snap, err := SeedSnapshot()
	if err != nil {
		return err
	}
	if err := store.Import(snap); err != nil {
		return fmt.Errorf("writing seed data: %w", err)
	}
	return nil
}

// SeedSnapshot parses the embedded sample data.
func SeedSnapshot() (*health.Snapshot, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(seedData, &doc); err != nil {
		return nil, fmt.Errorf("parsing seed data: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding seed data: %w", err)
	}
	return health.ParseExport(data)
}
