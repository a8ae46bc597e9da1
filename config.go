package glowstash

import (
	"os"
	"strconv"
	"time"

	"github.com/glowstash/glowstash/internal/appdir"
)

// Config configures the glowstash client.
type Config struct {
	// LocalPath is the path to the local SQLite database.
	// If empty, derived from Profile.
	LocalPath string

	// Profile is the inventory profile to operate against.
	// If empty, resolved via explicit > GLOWSTASH_PROFILE env > "default".
	Profile string

	// CatalogURL is the base URL of the catalog service.
	// If empty, the client operates in offline-only mode.
	CatalogURL string

	// UserID identifies the inventory owner on the catalog service.
	UserID string

	// Token is the bearer credential for catalog calls.
	Token string

	// PushConcurrency bounds concurrent product creates during push.
	// Defaults to 4.
	PushConcurrency int

	// SyncTimeout bounds a single sync pass. Defaults to 60 seconds.
	SyncTimeout time.Duration

	// Debug enables verbose logging of catalog communications.
	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
// Profile defaults to "default", and LocalPath is derived from Profile.
func DefaultConfig() Config {
	return Config{
		Profile:         "default",
		LocalPath:       appdir.ProfileDBPath("default"),
		PushConcurrency: 4,
		SyncTimeout:     60 * time.Second,
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	GLOWSTASH_DB_PATH      → LocalPath
//	GLOWSTASH_PROFILE      → Profile
//	GLOWSTASH_CATALOG_URL  → CatalogURL
//	GLOWSTASH_USER         → UserID
//	GLOWSTASH_TOKEN        → Token
//	GLOWSTASH_PUSH_LIMIT   → PushConcurrency
//	GLOWSTASH_DEBUG        → Debug (any non-empty value enables)
func ConfigFromEnv() Config {
	limit := 0
	if v := os.Getenv("GLOWSTASH_PUSH_LIMIT"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	return Config{
		LocalPath:       os.Getenv("GLOWSTASH_DB_PATH"),
		Profile:         os.Getenv("GLOWSTASH_PROFILE"),
		CatalogURL:      os.Getenv("GLOWSTASH_CATALOG_URL"),
		UserID:          os.Getenv("GLOWSTASH_USER"),
		Token:           os.Getenv("GLOWSTASH_TOKEN"),
		PushConcurrency: limit,
		Debug:           os.Getenv("GLOWSTASH_DEBUG") != "",
	}
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.LocalPath == "" {
		return &ValidationError{Field: "LocalPath", Message: "required: path to SQLite database"}
	}

	if c.Profile != "" {
		if err := appdir.ValidateProfile(c.Profile); err != nil {
			return &ValidationError{Field: "Profile", Message: err.Error()}
		}
	}

	if c.CatalogURL != "" && c.Token == "" {
		return &ValidationError{Field: "Token", Message: "required when CatalogURL is set"}
	}

	if c.CatalogURL != "" && c.UserID == "" {
		return &ValidationError{Field: "UserID", Message: "required when CatalogURL is set"}
	}

	if c.PushConcurrency < 0 {
		return &ValidationError{Field: "PushConcurrency", Message: "must be non-negative"}
	}

	if c.SyncTimeout < 0 {
		return &ValidationError{Field: "SyncTimeout", Message: "must be non-negative"}
	}

	return nil
}

// IsOffline returns true if the client operates in offline-only mode.
// Offline mode is determined by CatalogURL being empty.
func (c *Config) IsOffline() bool {
	return c.CatalogURL == ""
}

// WithDefaults fills in default values for unset fields.
// Profile resolution: explicit Profile field > GLOWSTASH_PROFILE env > "default".
// LocalPath is derived from the resolved Profile if not explicitly set.
//
// When the profile resolves to "default" and no database exists yet, a legacy
// database (GLOWSTASH_DB_PATH env or ./data/glowstash.db) is migrated into
// place. Migration is best-effort; errors are ignored.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.Profile == "" {
		resolved, err := appdir.ResolveProfile("")
		if err == nil {
			c.Profile = resolved
		} else {
			c.Profile = "default"
		}
	}

	if c.Profile == "default" && c.LocalPath == "" {
		envPath := os.Getenv("GLOWSTASH_DB_PATH")
		_, _ = appdir.MigrateLegacyDatabase(envPath, appdir.DefaultProfileRoot())
	}

	if c.LocalPath == "" {
		c.LocalPath = appdir.ProfileDBPath(c.Profile)
	}

	if c.PushConcurrency == 0 {
		c.PushConcurrency = defaults.PushConcurrency
	}
	if c.SyncTimeout == 0 {
		c.SyncTimeout = defaults.SyncTimeout
	}

	return c
}
