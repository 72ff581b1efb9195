package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
	"wikiq/pkg/cql"
)

var (
	space       string
	parentPage  string
	listProject string
	listDepth   int
)

// listPagesCmd represents the list-pages command
var listPagesCmd = &cobra.Command{
	Use:   "list-pages",
	Short: "List page hierarchy from a Confluence space",
	Long: `List page hierarchy from a Confluence space with visual tree formatting.

Without --parent the tree starts at the root pages of the space:
  🏢 Space indicators
  📁 Folders (pages with children)
  📄 Pages (leaf nodes)

A numeric --parent is treated as a page ID, anything else as a title.`,
	Example: `  wikiq list-pages --space DOCS                    # List all pages in space
  wikiq list-pages --space DOCS --parent "API"     # List pages under parent
  wikiq list-pages --space TEAM --depth 2          # Stop two levels down`,
	RunE: runListPages,
}

// pageNode is a page with its loaded children.
type pageNode struct {
	ID       string
	Title    string
	Children []pageNode
}

func runListPages(cmd *cobra.Command, args []string) error {
	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	spaceKey, err := resolveSpace(cfg, space, listProject)
	if err != nil {
		return err
	}
	if spaceKey == "" {
		return fmt.Errorf("space flag or --project required for list-pages command")
	}

	parent := parentPage
	if parent == "" {
		parent = cfg.ParentPage()
	}

	ctx := commandContext(cmd)
	var pages []pageNode
	if parent != "" {
		root, err := findContent(ctx, client, log, spaceKey, parent)
		if err != nil {
			return err
		}
		pages, err = loadChildren(ctx, client, root.ID, 1)
		if err != nil {
			return err
		}
		fmt.Printf("🏢 Space '%s' → 📁 '%s':\n\n", spaceKey, root.Title)
	} else {
		pages, err = loadRootPages(ctx, client, spaceKey)
		if err != nil {
			return err
		}
		fmt.Printf("🏢 Space '%s':\n\n", spaceKey)
	}

	if len(pages) == 0 {
		fmt.Println("📭 No pages found")
		return nil
	}
	printPageTree(pages, 0, true)
	return nil
}

// loadRootPages returns the pages of a space that have no ancestors, each
// with its subtree.
func loadRootPages(ctx context.Context, client confluence.ConfluenceClient, spaceKey string) ([]pageNode, error) {
	inSpace, err := cql.Space().Is(spaceKey)
	if err != nil {
		return nil, err
	}
	details := confluence.SearchDetails{
		CQL:    cql.And(inSpace, cql.Type().IsPage()),
		Expand: []string{"ancestors"},
	}

	var roots []pageNode
	for content, err := range client.Contents().SearchAll(ctx, details) {
		if err != nil {
			return nil, fmt.Errorf("failed to list pages: %w", err)
		}
		if len(content.Ancestors) > 0 {
			continue
		}
		children, err := loadChildren(ctx, client, content.ID, 1)
		if err != nil {
			return nil, err
		}
		roots = append(roots, pageNode{ID: content.ID, Title: content.Title, Children: children})
	}
	return roots, nil
}

func loadChildren(ctx context.Context, client confluence.ConfluenceClient, id string, depth int) ([]pageNode, error) {
	if listDepth > 0 && depth > listDepth {
		return nil, nil
	}
	var nodes []pageNode
	for child, err := range client.Contents().Children(ctx, id) {
		if err != nil {
			return nil, fmt.Errorf("failed to get children of %s: %w", id, err)
		}
		grandchildren, err := loadChildren(ctx, client, child.ID, depth+1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, pageNode{ID: child.ID, Title: child.Title, Children: grandchildren})
	}
	return nodes, nil
}

func printPageTree(pages []pageNode, indent int, isRoot bool) {
	for i, page := range pages {
		isLast := i == len(pages)-1

		prefix := ""
		if !isRoot {
			prefix = strings.Repeat("  ", indent)
			if isLast {
				prefix += "└── "
			} else {
				prefix += "├── "
			}
		}

		icon := "📄"
		if len(page.Children) > 0 {
			icon = "📁"
		}

		fmt.Printf("%s%s %s (ID: %s)\n", prefix, icon, page.Title, page.ID)

		if len(page.Children) > 0 {
			printPageTree(page.Children, indent+1, false)
		}
	}
}

func countTotalPages(pages []pageNode) int {
	total := len(pages)
	for _, page := range pages {
		total += countTotalPages(page.Children)
	}
	return total
}

func init() {
	rootCmd.AddCommand(listPagesCmd)

	listPagesCmd.Flags().StringVarP(&space, "space", "s", "", "Confluence space key (can be inferred from --project)")
	listPagesCmd.Flags().StringVarP(&parentPage, "parent", "p", "", "Parent page title or ID to start from (optional)")
	listPagesCmd.Flags().StringVarP(&listProject, "project", "P", "", "Project name defined in config to infer space")
	listPagesCmd.Flags().IntVarP(&listDepth, "depth", "d", 0, "Maximum depth below the starting pages (0 for unlimited)")
}
