package health

import (
	"context"
	"io"
)

// Vault stores exported snapshots off the machine. Each profile has one
// current export; writing replaces it.
type Vault interface {
	// PutExport stores the export for a profile. size is the number of
	// bytes that will be read from r. version is stored alongside so a
	// later writer can tell whether it is overwriting newer data.
	PutExport(ctx context.Context, profileID string, r io.Reader, size int64, version int64) error

	// GetExport writes the stored export for a profile to w.
	GetExport(ctx context.Context, profileID string, w io.Writer) error

	// GetExportVersion returns the version stored with the profile's export,
	// or 0 if there is none.
	GetExportVersion(ctx context.Context, profileID string) (int64, error)

	// ValidateSetup checks that the vault is reachable and writable.
	ValidateSetup(ctx context.Context) error
}
