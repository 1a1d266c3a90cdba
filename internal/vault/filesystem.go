package vault

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"healthtrack/internal/health"
)

// FileSystemVault stores exports as files:
//
//	<root>/
//	  exports/
//	    <profileID>.json      (latest export, possibly age-encrypted)
//	    <profileID>.version   (operation id the export was taken at)
type FileSystemVault struct {
	name       string
	root       string
	exportsDir string
}

// NewFileSystemVault creates a filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	exportsDir := filepath.Join(root, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}

	return &FileSystemVault{
		name:       name,
		root:       root,
		exportsDir: exportsDir,
	}, nil
}

// PutExport writes the export for a profile, then its version marker.
func (v *FileSystemVault) PutExport(_ context.Context, profileID string, r io.Reader, size int64, version int64) error {
	if err := v.writeFile(v.exportPath(profileID), r, size); err != nil {
		return err
	}
	versionData := strconv.FormatInt(version, 10)
	if err := os.WriteFile(v.versionPath(profileID), []byte(versionData), 0600); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}
	return nil
}

// GetExport writes the stored export for a profile to w.
func (v *FileSystemVault) GetExport(_ context.Context, profileID string, w io.Writer) error {
	f, err := os.Open(v.exportPath(profileID))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("export not found for profile: %s", profileID)
		}
		return fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	return nil
}

// GetExportVersion returns the version of the profile's export.
// Returns 0 if no version file exists.
func (v *FileSystemVault) GetExportVersion(_ context.Context, profileID string) (int64, error) {
	data, err := os.ReadFile(v.versionPath(profileID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}
	return parseVersion(data)
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup(context.Context) error {
	for _, dir := range []string{v.root, v.exportsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

func (v *FileSystemVault) exportPath(profileID string) string {
	return filepath.Join(v.exportsDir, profileID+".json")
}

func (v *FileSystemVault) versionPath(profileID string) string {
	return filepath.Join(v.exportsDir, profileID+".version")
}

// writeFile writes r to destPath through a temp file in the same directory
// and a rename, so a reader never sees a partial export.
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func parseVersion(data []byte) (int64, error) {
	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

var _ health.Vault = (*FileSystemVault)(nil)
