package main

import (
	"fmt"

	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List products in the inventory",
	Long: `List the local inventory.

Example:
  glowstash list
  glowstash list --unsynced
  glowstash list --json`,
	RunE: runList,
}

var listUnsynced bool

func init() {
	listCmd.Flags().BoolVar(&listUnsynced, "unsynced", false, "Only products not yet pushed to the catalog")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := glowstash.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	var products []glowstash.Product
	if listUnsynced {
		products, err = client.Store().UnsyncedProducts()
	} else {
		products, err = client.Products()
	}
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	return outputProductList(cmd, products)
}
