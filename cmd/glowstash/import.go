package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import an inventory export",
	Long: `Import products, tags and bags from a JSON export file.

Records that already exist locally are skipped by default; pass
--strategy replace to overwrite them.

Example:
  glowstash import backup.json
  glowstash import backup.json --strategy replace`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importStrategy string

func init() {
	importCmd.Flags().StringVar(&importStrategy, "strategy", "skip", "Merge strategy: skip or replace")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var strategy glowstash.MergeStrategy
	switch importStrategy {
	case "skip":
		strategy = glowstash.MergeStrategySkip
	case "replace":
		strategy = glowstash.MergeStrategyReplace
	default:
		return fmt.Errorf("unknown strategy %q (want skip or replace)", importStrategy)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	client, err := glowstash.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := client.Store().ImportJSON(ctx, f, strategy)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	return outputImportResult(cmd, res)
}
