package main

import (
	"context"
	"fmt"

	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

var bagCmd = &cobra.Command{
	Use:   "bag",
	Short: "Manage bags",
}

var bagAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a bag",
	Args:  cobra.ExactArgs(1),
	RunE:  runBagAdd,
}

var bagAttachCmd = &cobra.Command{
	Use:   "attach PRODUCT_ID BAG_ID",
	Short: "Add a product to a bag",
	Args:  cobra.ExactArgs(2),
	RunE:  runBagAttach,
}

var bagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bags",
	RunE:  runBagList,
}

var (
	bagIcon  string
	bagColor string
)

func init() {
	bagAddCmd.Flags().StringVar(&bagIcon, "icon", "", "Bag icon name")
	bagAddCmd.Flags().StringVar(&bagColor, "color", "", "Bag color (hex)")

	bagCmd.AddCommand(bagAddCmd)
	bagCmd.AddCommand(bagAttachCmd)
	bagCmd.AddCommand(bagListCmd)
	rootCmd.AddCommand(bagCmd)
}

func runBagAdd(cmd *cobra.Command, args []string) error {
	client, err := glowstash.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	bag, err := client.AddBag(context.Background(), glowstash.Bag{Name: args[0], Icon: bagIcon, Color: bagColor})
	if err != nil {
		return fmt.Errorf("add bag: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, bag)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", bag.ID, bag.Name)
	return nil
}

func runBagAttach(cmd *cobra.Command, args []string) error {
	client, err := glowstash.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	if err := client.BagProduct(args[0], args[1]); err != nil {
		return fmt.Errorf("attach bag: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, success(out, "attached"))
	return nil
}

func runBagList(cmd *cobra.Command, args []string) error {
	client, err := glowstash.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	bags, err := client.Bags()
	if err != nil {
		return fmt.Errorf("list bags: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, bags)
	}
	out := cmd.OutOrStdout()
	if len(bags) == 0 {
		fmt.Fprintln(out, muted(out, "no bags"))
		return nil
	}
	for _, b := range bags {
		fmt.Fprintf(out, "%s  %s\n", b.ID, b.Name)
	}
	return nil
}
