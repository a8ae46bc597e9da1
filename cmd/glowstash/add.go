package main

import (
	"context"
	"fmt"
	"time"

	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product to the inventory",
	Long: `Add a cosmetic product to the local inventory.

The product is stored on-device immediately. When a catalog service is
configured and you are signed in, it is pushed right away; otherwise it
stays a push candidate for the next sync.

Example:
  glowstash add --name "Weightless Foundation" --brand "Glossier" --barcode 0123456789
  glowstash add --name "Lip Balm" --vegan --cruelty-free --purchased 2026-08-01`,
	RunE: runAdd,
}

var (
	addName        string
	addBrand       string
	addBarcode     string
	addPurchased   string
	addOpened      string
	addVegan       bool
	addCrueltyFree bool
	addFavorite    bool
)

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "Product name (required)")
	addCmd.Flags().StringVar(&addBrand, "brand", "", "Brand name")
	addCmd.Flags().StringVar(&addBarcode, "barcode", "", "Product barcode")
	addCmd.Flags().StringVar(&addPurchased, "purchased", "", "Purchase date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addOpened, "opened", "", "Open date (YYYY-MM-DD)")
	addCmd.Flags().BoolVar(&addVegan, "vegan", false, "Mark as vegan")
	addCmd.Flags().BoolVar(&addCrueltyFree, "cruelty-free", false, "Mark as cruelty-free")
	addCmd.Flags().BoolVar(&addFavorite, "favorite", false, "Mark as favorite")

	addCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndValidateConfig()
	if err != nil {
		return err
	}

	client, err := glowstash.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	p := glowstash.Product{
		Name:        addName,
		Brand:       addBrand,
		Barcode:     addBarcode,
		Vegan:       addVegan,
		CrueltyFree: addCrueltyFree,
		Favorite:    addFavorite,
	}
	if p.PurchaseDate, err = parseDateFlag(addPurchased); err != nil {
		return fmt.Errorf("invalid --purchased: %w", err)
	}
	if p.OpenDate, err = parseDateFlag(addOpened); err != nil {
		return fmt.Errorf("invalid --opened: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	saved, err := client.AddProduct(ctx, p)
	if err != nil {
		return fmt.Errorf("add product: %w", err)
	}

	return outputProduct(cmd, saved)
}

func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
