package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
	"wikiq/internal/markdown"
	"wikiq/pkg/confluence"
)

var (
	publishFile      string
	publishSpace     string
	publishParent    string
	publishProject   string
	publishType      string
	publishKeepTitle bool
)

// publishCmd creates or updates a single page from a markdown file
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a markdown file as a Confluence page",
	Long: `Create or update a Confluence page from a single local markdown file.

The page title is the first level one heading of the file, or the file name.
If a page with that title already exists in the space it is updated with a new
version; otherwise it is created.

Space resolution precedence:
  1. --space flag
  2. --project flag (project's space)
  3. Top-level confluence.space_key
  4. First project in config (implicit default)

Parent resolution:
  - If --parent looks numeric it is treated as a page ID
  - Otherwise it is resolved as a title in the target space
  - Without --parent the project's parent page is used, if any`,
	Example: `  wikiq publish -f docs/release.md --space DOCS --parent "Release Notes"`,
	RunE:    runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	if publishFile == "" {
		return fmt.Errorf("file flag is required for publish command")
	}
	info, err := os.Stat(publishFile)
	if err != nil {
		return fmt.Errorf("failed to access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; provide a single markdown file", publishFile)
	}
	if strings.ToLower(filepath.Ext(publishFile)) != ".md" {
		return fmt.Errorf("file must have .md extension: %s", publishFile)
	}

	contentType := confluence.ContentType(publishType)
	if contentType != confluence.TypePage && contentType != confluence.TypeBlogPost {
		return fmt.Errorf("unsupported type: %s (use page or blogpost)", publishType)
	}

	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	spaceKey, err := resolveSpace(cfg, publishSpace, publishProject)
	if err != nil {
		return err
	}
	if spaceKey == "" {
		return fmt.Errorf("space flag or --project required for publish command")
	}

	doc, err := markdown.ParseFile(publishFile)
	if err != nil {
		return fmt.Errorf("failed to parse markdown file: %w", err)
	}
	log.Debug("Parsed markdown file: title=%s", doc.Title)
	body, err := doc.Body(!publishKeepTitle)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	parent := publishParent
	if parent == "" {
		parent = cfg.ParentPage()
	}
	var parentID string
	if parent != "" {
		parentPage, err := findContent(ctx, client, log, spaceKey, parent)
		if err != nil {
			return fmt.Errorf("failed to resolve parent page '%s': %w", parent, err)
		}
		parentID = parentPage.ID
	}

	existing, err := client.Contents().FindByTitle(ctx, spaceKey, doc.Title, contentType)
	if err != nil {
		return fmt.Errorf("failed to search for existing page: %w", err)
	}

	if existing != nil {
		log.Debug("Updating existing page ID=%s title=%s", existing.ID, existing.Title)
		update := &confluence.Content{
			ID:      existing.ID,
			Type:    contentType,
			Title:   doc.Title,
			Space:   &confluence.Space{Key: spaceKey},
			Version: existing.Version,
			Body:    &confluence.Body{Storage: &confluence.Storage{Value: body, Representation: "storage"}},
		}
		if parentID != "" {
			update.Ancestors = []confluence.Content{{ID: parentID}}
		}
		page, err := client.Contents().Update(ctx, update)
		if err != nil {
			if confluence.IsUpdateForbidden(err) {
				return fmt.Errorf("page '%s' is locked for editing: %w", doc.Title, err)
			}
			return fmt.Errorf("failed to update page: %w", err)
		}
		fmt.Printf("Updated page '%s' (ID: %s) in space '%s'\n", page.Title, page.ID, spaceKey)
		return nil
	}

	log.Debug("Creating %s '%s' in space %s (parent %q)", contentType, doc.Title, spaceKey, parentID)
	page, err := client.Contents().Create(ctx, contentType, doc.Title, spaceKey, body, parentID)
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	fmt.Printf("Created page '%s' (ID: %s) in space '%s'\n", page.Title, page.ID, spaceKey)
	return nil
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVarP(&publishFile, "file", "f", "", "Path to local markdown file (required)")
	publishCmd.Flags().StringVarP(&publishSpace, "space", "s", "", "Confluence space key (can be inferred from --project)")
	publishCmd.Flags().StringVarP(&publishParent, "parent", "p", "", "Optional parent page title or ID")
	publishCmd.Flags().StringVarP(&publishProject, "project", "P", "", "Project name defined in config to infer space")
	publishCmd.Flags().StringVarP(&publishType, "type", "t", "page", "Content type to create (page or blogpost)")
	publishCmd.Flags().BoolVar(&publishKeepTitle, "keep-title", false, "Keep the title heading in the page body")

	if err := publishCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("Failed to mark file flag as required: %v", err))
	}
}
