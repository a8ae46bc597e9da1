package main

import (
	"context"
	"fmt"
	"time"

	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize with the catalog service",
	Long: `Synchronize the local inventory with the catalog service.

A full sync pulls tags, bags and products from the catalog, merges them
into the local store, then pushes any products created locally.

Example:
  glowstash sync           # Full sync (pull + push)
  glowstash sync --push    # Push unsynced products only`,
	RunE: runSync,
}

var syncPushOnly bool

func init() {
	syncCmd.Flags().BoolVar(&syncPushOnly, "push", false, "Push unsynced products only")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndValidateConfig()
	if err != nil {
		return err
	}
	if cfg.IsOffline() {
		return fmt.Errorf("GLOWSTASH_CATALOG_URL not configured")
	}

	client, err := glowstash.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SyncTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	start := time.Now()

	if syncPushOnly {
		fmt.Fprintln(out, "Pushing unsynced products...")
		if err := client.PushUnsynced(ctx); err != nil {
			return fmt.Errorf("push: %w", err)
		}
		fmt.Fprintf(out, "Push complete (took %s)\n", time.Since(start).Round(time.Millisecond))
		return nil
	}

	fmt.Fprintln(out, "Synchronizing with catalog...")
	if err := client.Sync(ctx); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Fprintf(out, "Sync complete (took %s)\n", time.Since(start).Round(time.Millisecond))

	pass := client.LastSyncStats()
	fmt.Fprintf(out, "Pulled:       %d tags, %d bags, %d products\n",
		pass.TagsPulled, pass.BagsPulled, pass.ProductsPulled)
	fmt.Fprintf(out, "Pushed:       %d\n", pass.Pushed)
	if pass.Errors > 0 {
		fmt.Fprintf(out, "Phase errors: %d\n", pass.Errors)
	}

	stats, err := client.Stats()
	if err == nil {
		fmt.Fprintf(out, "Pending sync: %d\n", stats.PendingSync)
	}

	return nil
}
