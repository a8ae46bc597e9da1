package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export the inventory as JSON",
	Long: `Export the local inventory (products, tags and bags) as JSON.

Writes to stdout unless FILE is given.

Example:
  glowstash export backup.json
  glowstash export > backup.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	client, err := glowstash.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(args) == 0 {
		return client.Store().ExportJSON(ctx, cfg.Profile, cmd.OutOrStdout())
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := client.Store().ExportJSON(ctx, cfg.Profile, f); err != nil {
		f.Close()
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
	return nil
}
