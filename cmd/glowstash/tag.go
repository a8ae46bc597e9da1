package main

import (
	"context"
	"fmt"

	"github.com/glowstash/glowstash"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a tag",
	Long: `Create a tag in the local inventory.

Example:
  glowstash tag add "Holy Grail" --color "#D96C9A"`,
	Args: cobra.ExactArgs(1),
	RunE: runTagAdd,
}

var tagAttachCmd = &cobra.Command{
	Use:   "attach PRODUCT_ID TAG_ID",
	Short: "Attach a tag to a product",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagAttach,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	RunE:  runTagList,
}

var tagColor string

func init() {
	tagAddCmd.Flags().StringVar(&tagColor, "color", "", "Tag color (hex)")

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagAttachCmd)
	tagCmd.AddCommand(tagListCmd)
	rootCmd.AddCommand(tagCmd)
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	client, err := glowstash.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	tag, err := client.AddTag(context.Background(), glowstash.Tag{Name: args[0], Color: tagColor})
	if err != nil {
		return fmt.Errorf("add tag: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, tag)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", tag.ID, tag.Name)
	return nil
}

func runTagAttach(cmd *cobra.Command, args []string) error {
	client, err := glowstash.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	if err := client.TagProduct(args[0], args[1]); err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, success(out, "attached"))
	return nil
}

func runTagList(cmd *cobra.Command, args []string) error {
	client, err := glowstash.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	tags, err := client.Tags()
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, tags)
	}
	out := cmd.OutOrStdout()
	if len(tags) == 0 {
		fmt.Fprintln(out, muted(out, "no tags"))
		return nil
	}
	for _, t := range tags {
		fmt.Fprintf(out, "%s  %s\n", t.ID, t.Name)
	}
	return nil
}
