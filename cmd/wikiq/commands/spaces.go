package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
)

var (
	spacesKey         string
	spacesDescription string
	spacesPrivate     bool
)

var spacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "List, show, create and delete Confluence spaces",
	Long: `List every space visible to the configured user. With --key, show the
details of one space along with the first page of its pages and blog posts.`,
	Example: `  wikiq spaces
  wikiq spaces --key DOCS`,
	RunE: runSpaces,
}

func runSpaces(cmd *cobra.Command, args []string) error {
	_, client, _, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if spacesKey == "" {
		count := 0
		for sp, err := range client.Spaces().All(ctx) {
			if err != nil {
				return fmt.Errorf("failed to list spaces: %w", err)
			}
			fmt.Printf("🏢 %-12s %s", sp.Key, sp.Name)
			if sp.Type != "" {
				fmt.Printf(" (%s)", sp.Type)
			}
			fmt.Println()
			count++
		}
		fmt.Printf("\n%d space(s)\n", count)
		return nil
	}

	sp, err := client.Spaces().Get(ctx, spacesKey)
	if err != nil {
		return fmt.Errorf("failed to get space: %w", err)
	}
	fmt.Printf("🏢 %s (%s)\n", sp.Name, sp.Key)
	if sp.Type != "" {
		fmt.Printf("   Type: %s\n", sp.Type)
	}
	if sp.Description != nil && sp.Description.Plain != nil && sp.Description.Plain.Value != "" {
		fmt.Printf("   Description: %s\n", sp.Description.Plain.Value)
	}

	contents, err := client.Spaces().GetContents(ctx, spacesKey)
	if err != nil {
		return fmt.Errorf("failed to get space contents: %w", err)
	}
	if contents.Pages != nil {
		fmt.Printf("\n📄 Pages (%d):\n", len(contents.Pages.Results))
		for _, p := range contents.Pages.Results {
			fmt.Printf("   %s (ID: %s)\n", p.Title, p.ID)
		}
	}
	if contents.BlogPosts != nil {
		fmt.Printf("\n📰 Blog posts (%d):\n", len(contents.BlogPosts.Results))
		for _, p := range contents.BlogPosts.Results {
			fmt.Printf("   %s (ID: %s)\n", p.Title, p.ID)
		}
	}
	return nil
}

var spacesCreateCmd = &cobra.Command{
	Use:     "create KEY NAME",
	Short:   "Create a space",
	Example: `  wikiq spaces create TEAM "Team Space" --description "Team notes"
  wikiq spaces create SCRATCH "My Scratchpad" --private`,
	Args: cobra.ExactArgs(2),
	RunE: runSpacesCreate,
}

var spacesDeleteCmd = &cobra.Command{
	Use:   "delete KEY",
	Short: "Delete a space (runs as a background task on the server)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpacesDelete,
}

func runSpacesCreate(cmd *cobra.Command, args []string) error {
	_, client, _, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	create := client.Spaces().Create
	if spacesPrivate {
		create = client.Spaces().CreatePrivate
	}
	sp, err := create(ctx, args[0], args[1], spacesDescription)
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}
	fmt.Printf("Created space '%s' (%s)\n", sp.Name, sp.Key)
	return nil
}

func runSpacesDelete(cmd *cobra.Command, args []string) error {
	_, client, _, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	task, err := client.Spaces().Delete(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete space: %w", err)
	}
	fmt.Printf("Deletion of space '%s' started (task %s)\n", args[0], task.ID)
	if task.Links.Status != "" {
		fmt.Printf("   Status: %s\n", task.Links.Status)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(spacesCmd)
	spacesCmd.AddCommand(spacesCreateCmd, spacesDeleteCmd)

	spacesCmd.Flags().StringVarP(&spacesKey, "key", "k", "", "Show a single space by key")
	spacesCreateCmd.Flags().StringVarP(&spacesDescription, "description", "d", "", "Plain text description")
	spacesCreateCmd.Flags().BoolVar(&spacesPrivate, "private", false, "Create a private space only you can see")
}
