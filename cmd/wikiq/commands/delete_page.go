package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"wikiq/internal/config"
)

var (
	deletePageSpace   string
	deletePageProject string
	deletePagePurge   bool
	deletePageYes     bool
)

var deletePageCmd = &cobra.Command{
	Use:   "delete-page PAGE",
	Short: "Move a page to the trash, or purge it from the trash",
	Long: `Delete a page by ID or title. By default the page is moved to the space
trash. With --purge the page must already be trashed and is removed for good.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeletePage,
}

func runDeletePage(cmd *cobra.Command, args []string) error {
	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	spaceKey, err := resolveSpace(cfg, deletePageSpace, deletePageProject)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	id, label := args[0], args[0]
	if !deletePagePurge {
		// Trashed pages cannot be looked up by title.
		page, err := findContent(ctx, client, log, spaceKey, args[0])
		if err != nil {
			return err
		}
		id, label = page.ID, page.Title
	} else if !isNumeric(id) {
		return fmt.Errorf("--purge needs a page ID, got '%s'", id)
	}

	if !deletePageYes {
		confirm := false
		prompt := &survey.Confirm{Message: fmt.Sprintf("Delete '%s' (ID: %s)?", label, id)}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return err
		}
		if !confirm {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := client.Contents().Delete(ctx, id, deletePagePurge); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	if deletePagePurge {
		fmt.Printf("🗑️  Purged page %s\n", id)
	} else {
		fmt.Printf("🗑️  Moved '%s' (ID: %s) to the trash\n", label, id)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(deletePageCmd)

	deletePageCmd.Flags().StringVarP(&deletePageSpace, "space", "s", "", "Space key used to resolve a page title")
	deletePageCmd.Flags().StringVarP(&deletePageProject, "project", "P", "", "Project name defined in config to infer space")
	deletePageCmd.Flags().BoolVar(&deletePagePurge, "purge", false, "Remove an already trashed page permanently")
	deletePageCmd.Flags().BoolVarP(&deletePageYes, "yes", "y", false, "Do not ask for confirmation")
}
