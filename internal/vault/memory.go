package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"healthtrack/internal/health"
)

// MemoryVault keeps exports in memory. It is useful for tests and for the
// "memory" vault type. Safe for concurrent use.
type MemoryVault struct {
	name     string
	exports  map[string][]byte // profileID -> export
	versions map[string]int64  // profileID -> version
	mu       sync.RWMutex
}

// NewMemoryVault creates an empty in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:     name,
		exports:  make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

// PutExport stores the export for a profile, replacing any earlier one.
func (m *MemoryVault) PutExport(_ context.Context, profileID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.exports[profileID] = data
	m.versions[profileID] = version
	return nil
}

// GetExport writes the stored export for a profile to w.
func (m *MemoryVault) GetExport(_ context.Context, profileID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.exports[profileID]
	if !ok {
		return fmt.Errorf("export not found for profile: %s", profileID)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// GetExportVersion returns the version stored with the profile's export,
// or 0 if there is none.
func (m *MemoryVault) GetExportVersion(_ context.Context, profileID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.versions[profileID], nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup(context.Context) error {
	return nil
}

var _ health.Vault = (*MemoryVault)(nil)
