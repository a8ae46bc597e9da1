// Package appdir manages the on-disk layout of glowstash inventory profiles.
package appdir

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Profile validation errors.
var (
	// ErrInvalidProfile indicates the profile name format is invalid.
	ErrInvalidProfile = errors.New("invalid profile name: must be lowercase alphanumeric with hyphens, at most 64 characters")
)

// profileRegex validates profile name format.
// Format: lowercase alphanumeric and hyphens, 1-64 characters,
// no leading/trailing hyphens.
var profileRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,62}[a-z0-9])?$`)

// ValidateProfile validates a profile name.
// Returns ErrInvalidProfile if the name doesn't match the required pattern.
func ValidateProfile(name string) error {
	if name == "" {
		return ErrInvalidProfile
	}
	if strings.Contains(name, "--") {
		return ErrInvalidProfile
	}
	if !profileRegex.MatchString(name) {
		return ErrInvalidProfile
	}
	return nil
}

// ResolveProfile determines the profile to use based on priority chain.
// Priority: explicit > GLOWSTASH_PROFILE env > "default"
// Returns the resolved profile name and any validation error.
func ResolveProfile(explicit string) (string, error) {
	if explicit != "" {
		if err := ValidateProfile(explicit); err != nil {
			return "", fmt.Errorf("invalid profile %q: %w", explicit, err)
		}
		return explicit, nil
	}

	if envProfile := os.Getenv("GLOWSTASH_PROFILE"); envProfile != "" {
		if err := ValidateProfile(envProfile); err != nil {
			return "", fmt.Errorf("invalid GLOWSTASH_PROFILE %q: %w", envProfile, err)
		}
		return envProfile, nil
	}

	return "default", nil
}
