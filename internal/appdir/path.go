package appdir

import (
	"os"
	"path/filepath"
)

// DefaultProfileRoot returns the root directory for all inventory profiles.
// Defaults to ~/.glowstash/profiles, falls back to ./.glowstash/profiles if
// the home dir is unavailable.
func DefaultProfileRoot() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".glowstash", "profiles")
	}
	return filepath.Join(home, ".glowstash", "profiles")
}

// ProfileDBPath returns the full path to a profile's database file.
// Example: ProfileDBPath("travel") -> ~/.glowstash/profiles/travel/glowstash.db
func ProfileDBPath(profile string) string {
	return filepath.Join(DefaultProfileRoot(), profile, "glowstash.db")
}
