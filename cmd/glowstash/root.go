package main

import (
	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

var (
	cfgDBPath     string
	cfgProfile    string
	cfgCatalogURL string
	cfgToken      string
	cfgUser       string
	outputJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "glowstash",
	Short: "Glowstash - personal cosmetics inventory",
	Long: `Glowstash tracks your cosmetic products on-device and keeps them in
sync with the glowstash catalog service when you are signed in.

The local store is the source of truth while offline; a sync pass pulls
tags, bags and products from the catalog and pushes anything created
locally in the meantime.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db-path", "", "Path to the local inventory database")
	rootCmd.PersistentFlags().StringVar(&cfgProfile, "profile", "", "Inventory profile (default: \"default\")")
	rootCmd.PersistentFlags().StringVar(&cfgCatalogURL, "catalog-url", "", "Base URL of the catalog service")
	rootCmd.PersistentFlags().StringVar(&cfgToken, "token", "", "Bearer token for the catalog service")
	rootCmd.PersistentFlags().StringVar(&cfgUser, "user", "", "Catalog user id")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
}

// loadConfig layers configuration: defaults < environment < flags.
func loadConfig() glowstash.Config {
	cfg := glowstash.ConfigFromEnv()

	if cfgDBPath != "" {
		cfg.LocalPath = cfgDBPath
	}
	if cfgProfile != "" {
		cfg.Profile = cfgProfile
	}
	if cfgCatalogURL != "" {
		cfg.CatalogURL = cfgCatalogURL
	}
	if cfgToken != "" {
		cfg.Token = cfgToken
	}
	if cfgUser != "" {
		cfg.UserID = cfgUser
	}

	return cfg.WithDefaults()
}

func loadAndValidateConfig() (glowstash.Config, error) {
	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
