package main

import (
	"context"
	"fmt"
	"time"

	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Long: `Display statistics about the local inventory store.

Example:
  glowstash stats
  glowstash stats --health`,
	RunE: runStats,
}

var statsHealth bool

func init() {
	statsCmd.Flags().BoolVar(&statsHealth, "health", false, "Include health check")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := glowstash.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	stats, err := client.Stats()
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if outputJSON && !statsHealth {
		return outputAsJSON(cmd, stats)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, heading(out, "Local Store Statistics"))
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "Products:       %d\n", stats.ProductCount)
	fmt.Fprintf(out, "Tags:           %d\n", stats.TagCount)
	fmt.Fprintf(out, "Bags:           %d\n", stats.BagCount)
	fmt.Fprintf(out, "Pending sync:   %d\n", stats.PendingSync)
	fmt.Fprintf(out, "Schema version: %s\n", stats.SchemaVersion)
	fmt.Fprintf(out, "Last sync:      %s\n", formatLastSync(stats.LastSync))

	if statsHealth {
		fmt.Fprintln(out)
		fmt.Fprintln(out, heading(out, "Health Check"))
		fmt.Fprintln(out, "------------")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		health := client.HealthCheck(ctx)

		status := "healthy"
		if !health.Healthy {
			status = "unhealthy"
		}
		fmt.Fprintf(out, "Status:            %s\n", status)
		fmt.Fprintf(out, "Store OK:          %v\n", health.StoreOK)
		fmt.Fprintf(out, "Catalog reachable: %v\n", health.CatalogReachable)

		if health.Error != "" {
			fmt.Fprintf(out, "Error:             %s\n", health.Error)
		}
	}

	return nil
}
