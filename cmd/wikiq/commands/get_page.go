package commands

import (
	"fmt"

	htmldoc "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/spf13/cobra"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
)

var (
	getPageSpace     string
	getPageIDOrTitle string
	getPageFormat    string
	getPageProject   string
)

// getPageCmd prints the body of a single page
var getPageCmd = &cobra.Command{
	Use:   "get-page",
	Short: "Return the contents of a Confluence page",
	Long: `Fetch a Confluence page by ID or title and print its body.

A numeric --page is looked up as an ID first. Titles are resolved in the
space given by --space, or the space of --project, or the configured default.`,
	Example: `  wikiq get-page --space DOCS --page 123456789
  wikiq get-page --space DOCS --page "My Page Title" --format markdown`,
	RunE: runGetPage,
}

func runGetPage(cmd *cobra.Command, args []string) error {
	if getPageIDOrTitle == "" {
		return fmt.Errorf("page flag is required for get-page command")
	}

	switch getPageFormat {
	case "", "storage", "html", "markdown":
	default:
		return fmt.Errorf("unsupported format: %s", getPageFormat)
	}

	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	spaceKey, err := resolveSpace(cfg, getPageSpace, getPageProject)
	if err != nil {
		return err
	}
	if spaceKey == "" && !isNumeric(getPageIDOrTitle) {
		return fmt.Errorf("space flag or --project required to look up a page by title")
	}

	ctx := commandContext(cmd)
	page, err := findContent(ctx, client, log, spaceKey, getPageIDOrTitle)
	if err != nil {
		return err
	}

	format := getPageFormat
	if format == "" {
		format = "storage"
	}
	if format != "storage" && (page.Body == nil || page.Body.View == nil) {
		full, err := client.Contents().Get(ctx, page.ID, "body.storage", "body.view", "version", "space")
		if err != nil {
			return fmt.Errorf("failed to get rendered page: %w", err)
		}
		page = full
	}

	fmt.Printf("# %s (ID: %s)\n\n", page.Title, page.ID)

	content, err := generatePageOutput(page, format)
	if err != nil {
		return err
	}
	fmt.Println(content)
	return nil
}

// generatePageOutput returns the page content in the requested format.
// It does not include the header line with title/ID.
func generatePageOutput(page *confluence.Content, format string) (string, error) {
	switch format {
	case "storage":
		return page.StorageValue(), nil
	case "html":
		return pageHTML(page), nil
	case "markdown":
		html := pageHTML(page)
		md, err := htmldoc.ConvertString(html)
		if err != nil {
			return html, nil // fallback to raw HTML on conversion errors
		}
		return string(md), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// pageHTML prefers the rendered view and falls back to storage format.
func pageHTML(page *confluence.Content) string {
	if page.Body != nil && page.Body.View != nil && page.Body.View.Value != "" {
		return page.Body.View.Value
	}
	return page.StorageValue()
}

func init() {
	rootCmd.AddCommand(getPageCmd)

	getPageCmd.Flags().StringVarP(&getPageSpace, "space", "s", "", "Confluence space key (can be inferred from --project)")
	getPageCmd.Flags().StringVarP(&getPageIDOrTitle, "page", "p", "", "Page title or ID to fetch (required)")
	getPageCmd.Flags().StringVarP(&getPageFormat, "format", "f", "storage", "Output format: storage|html|markdown")
	getPageCmd.Flags().StringVarP(&getPageProject, "project", "P", "", "Project name defined in config to infer space")

	if err := getPageCmd.MarkFlagRequired("page"); err != nil {
		panic(fmt.Sprintf("Failed to mark page flag as required: %v", err))
	}
}
