package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

// outputAsJSON writes any value as formatted JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v any) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputProduct prints a single product in the configured format.
func outputProduct(cmd *cobra.Command, p *glowstash.Product) error {
	if outputJSON {
		return outputAsJSON(cmd, p)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, heading(out, p.Name))
	if p.Brand != "" {
		fmt.Fprintf(out, "  brand:   %s\n", p.Brand)
	}
	if p.Barcode != "" {
		fmt.Fprintf(out, "  barcode: %s\n", p.Barcode)
	}
	fmt.Fprintf(out, "  id:      %s\n", p.ID)
	fmt.Fprintf(out, "  synced:  %s\n", syncedLabel(p))
	if p.PurchaseDate != nil {
		fmt.Fprintf(out, "  bought:  %s\n", p.PurchaseDate.Format("2006-01-02"))
	}
	if p.OpenDate != nil {
		fmt.Fprintf(out, "  opened:  %s\n", p.OpenDate.Format("2006-01-02"))
	}
	if p.Favorite {
		fmt.Fprintln(out, "  favorite")
	}
	return nil
}

// outputProductList prints products one per line.
func outputProductList(cmd *cobra.Command, products []glowstash.Product) error {
	if outputJSON {
		return outputAsJSON(cmd, products)
	}

	out := cmd.OutOrStdout()
	if len(products) == 0 {
		fmt.Fprintln(out, muted(out, "no products"))
		return nil
	}
	for _, p := range products {
		line := p.Name
		if p.Brand != "" {
			line += " " + muted(out, "("+p.Brand+")")
		}
		fmt.Fprintf(out, "%s  %s  %s\n", p.ID, line, syncedLabel(&p))
	}
	return nil
}

func syncedLabel(p *glowstash.Product) string {
	if p.Synced() {
		return "yes"
	}
	return "pending"
}

// outputImportResult prints an import summary.
func outputImportResult(cmd *cobra.Command, res *glowstash.ImportResult) error {
	if outputJSON {
		return outputAsJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "imported %d records: %d created, %d updated, %d skipped\n",
		res.Total, res.Created, res.Updated, res.Skipped)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  error: %s\n", e)
	}
	return nil
}

func formatLastSync(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s ago)", t.Format(time.RFC3339), time.Since(t).Round(time.Minute))
}
