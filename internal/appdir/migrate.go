package appdir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultLegacyDBPath returns the path early glowstash builds used for the
// database: ./data/glowstash.db relative to the current directory.
func DefaultLegacyDBPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "data", "glowstash.db")
}

// MigrationResult contains the result of a legacy database migration.
type MigrationResult struct {
	// Migrated is true if migration occurred, false if no migration needed.
	Migrated bool
	// SourcePath is the path of the database that was migrated.
	SourcePath string
	// DestPath is the path of the new database.
	DestPath string
}

// MigrateLegacyDatabase checks for a pre-profile database and copies it into
// the default profile.
//
// Migration logic:
//  1. If the default profile already has a database, skip migration
//  2. Check envPath (GLOWSTASH_DB_PATH) if provided, otherwise the legacy path
//  3. If an existing DB is found, copy it to profileRoot/default/glowstash.db
func MigrateLegacyDatabase(envPath, profileRoot string) (MigrationResult, error) {
	destPath := filepath.Join(profileRoot, "default", "glowstash.db")
	if _, err := os.Stat(destPath); err == nil {
		return MigrationResult{Migrated: false}, nil
	}

	sourcePath := envPath
	if sourcePath == "" {
		sourcePath = DefaultLegacyDBPath()
	}

	if _, err := os.Stat(sourcePath); os.IsNotExist(err) {
		return MigrationResult{Migrated: false}, nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return MigrationResult{Migrated: false}, fmt.Errorf("create default profile directory: %w", err)
	}

	if err := copyFile(sourcePath, destPath); err != nil {
		return MigrationResult{Migrated: false}, fmt.Errorf("copy database: %w", err)
	}

	return MigrationResult{
		Migrated:   true,
		SourcePath: sourcePath,
		DestPath:   destPath,
	}, nil
}

// copyFile copies a file from src to dst with durability guarantees.
// On failure, attempts to clean up any partial destination file.
func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	dest, err := os.Create(dst)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		dest.Close()
		if !success {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(dest, source); err != nil {
		return err
	}

	// SQLite durability: flush before the copy is considered complete
	if err := dest.Sync(); err != nil {
		return err
	}

	success = true
	return nil
}
