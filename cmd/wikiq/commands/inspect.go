package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
)

var (
	inspectSpace   string
	inspectPage    string
	inspectProject string
	showDetails    bool
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect page hierarchy and relationships in Confluence",
	Long: `Inspect page hierarchy and relationships in Confluence with detailed information.

This command helps debug page relationships by showing:
  - Page details (ID, title, version, web link)
  - Parent page chain (ancestors)
  - Children pages
  - History and labels (with --details)

Without --page the command prints an overview of the space.`,
	Example: `  wikiq inspect --space DOCS --page "My Page"        # Inspect by title
  wikiq inspect --space DOCS --page 123456789        # Inspect by ID
  wikiq inspect --space DOCS                         # Show space overview
  wikiq inspect --space DOCS --page "Root" --details # Show detailed info`,
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	spaceKey, err := resolveSpace(cfg, inspectSpace, inspectProject)
	if err != nil {
		return err
	}
	if spaceKey == "" {
		return fmt.Errorf("space flag or --project required for inspect command")
	}

	ctx := commandContext(cmd)
	if inspectPage == "" {
		return inspectSpaceOverview(ctx, client, spaceKey)
	}

	page, err := findContent(ctx, client, log, spaceKey, inspectPage)
	if err != nil {
		return err
	}
	return inspectPageDetails(ctx, client, page, spaceKey)
}

func inspectSpaceOverview(ctx context.Context, client confluence.ConfluenceClient, spaceKey string) error {
	fmt.Printf("🏢 Inspecting Space: %s\n", spaceKey)
	fmt.Println(strings.Repeat("=", 50))

	if sp, err := client.Spaces().Get(ctx, spaceKey); err == nil {
		fmt.Printf("   📛 Name: %s\n", sp.Name)
		if sp.Type != "" {
			fmt.Printf("   🏷️  Type: %s\n", sp.Type)
		}
		fmt.Println()
	}

	pages, err := loadRootPages(ctx, client, spaceKey)
	if err != nil {
		return fmt.Errorf("failed to get page hierarchy: %w", err)
	}

	if len(pages) == 0 {
		fmt.Println("📭 No pages found in this space")
		return nil
	}

	fmt.Printf("📊 Found %d root pages in space\n\n", len(pages))
	printPageTree(pages, 0, true)

	fmt.Printf("\n📈 Summary:\n")
	fmt.Printf("   🌳 Root pages: %d\n", len(pages))
	fmt.Printf("   📄 Total pages: %d\n", countTotalPages(pages))
	return nil
}

func inspectPageDetails(ctx context.Context, client confluence.ConfluenceClient, page *confluence.Content, spaceKey string) error {
	fmt.Printf("🔍 Inspecting Page: %s\n", page.Title)
	fmt.Println(strings.Repeat("=", 50))

	fmt.Printf("📋 Page Details:\n")
	fmt.Printf("   🆔 ID: %s\n", page.ID)
	fmt.Printf("   📝 Title: %s\n", page.Title)
	fmt.Printf("   🏢 Space: %s\n", spaceKey)
	if page.Version != nil {
		fmt.Printf("   🔢 Version: %d\n", page.Version.Number)
	}
	if u, err := client.Contents().CreateWebUIURL(page.Links); err == nil {
		fmt.Printf("   🔗 URL: %s\n", u)
	}

	if showDetails {
		storage := page.StorageValue()
		fmt.Printf("   📊 Content Length: %d characters\n", len(storage))

		hasChildrenMacro := strings.Contains(storage, "ac:name=\"children\"")
		fmt.Printf("   🔗 Has Children Macro: %v\n", hasChildrenMacro)
	}

	fmt.Printf("\n👆 Parent Chain:\n")
	ancestors, err := client.Contents().GetAncestors(ctx, page.ID)
	if err != nil {
		fmt.Printf("   ❌ Failed to get ancestors: %s\n", err)
	} else if len(ancestors) == 0 {
		fmt.Printf("   🏠 This is a root page (no parents)\n")
	} else {
		for i, ancestor := range ancestors {
			fmt.Printf("   %s📁 %s (ID: %s)\n", strings.Repeat("  ", i), ancestor.Title, ancestor.ID)
		}
		fmt.Printf("   %s📄 %s (ID: %s) ← Current Page\n", strings.Repeat("  ", len(ancestors)), page.Title, page.ID)
	}

	fmt.Printf("\n👇 Children:\n")
	children, err := client.Contents().GetChildren(ctx, page.ID, nil)
	if err != nil {
		fmt.Printf("   ❌ Failed to get children: %s\n", err)
	} else if len(children.Results) == 0 {
		fmt.Printf("   📭 No child pages\n")
	} else {
		fmt.Printf("   📊 Found %d child pages:\n", len(children.Results))
		for _, child := range children.Results {
			fmt.Printf("     📄 %s (ID: %s)\n", child.Title, child.ID)
		}
		if children.HasNext() {
			fmt.Printf("     … more children not shown\n")
		}
	}

	if !showDetails {
		return nil
	}

	fmt.Printf("\n🕓 History:\n")
	history, err := client.Contents().GetHistory(ctx, page.ID)
	if err != nil {
		fmt.Printf("   ❌ Failed to get history: %s\n", err)
	} else {
		if history.CreatedBy != nil {
			fmt.Printf("   ✍️  Created by %s on %s\n", history.CreatedBy.DisplayName, history.CreatedDate.Format("2006-01-02 15:04"))
		}
		if history.LastUpdated != nil {
			by := ""
			if history.LastUpdated.By != nil {
				by = " by " + history.LastUpdated.By.DisplayName
			}
			fmt.Printf("   🔄 Last updated%s on %s (version %d)\n", by, history.LastUpdated.When.Format("2006-01-02 15:04"), history.LastUpdated.Number)
		}
	}

	fmt.Printf("\n🏷️  Labels:\n")
	labels, err := client.Contents().GetLabels(ctx, page.ID)
	if err != nil {
		fmt.Printf("   ❌ Failed to get labels: %s\n", err)
	} else if len(labels.Results) == 0 {
		fmt.Printf("   📭 No labels\n")
	} else {
		names := make([]string, 0, len(labels.Results))
		for _, l := range labels.Results {
			names = append(names, l.Name)
		}
		fmt.Printf("   %s\n", strings.Join(names, ", "))
	}

	return nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectSpace, "space", "s", "", "Confluence space key (can be inferred from --project)")
	inspectCmd.Flags().StringVarP(&inspectPage, "page", "p", "", "Page title or ID to inspect (optional, shows space overview if omitted)")
	inspectCmd.Flags().StringVarP(&inspectProject, "project", "P", "", "Project name defined in config to infer space")
	inspectCmd.Flags().BoolVarP(&showDetails, "details", "d", false, "Show detailed page information")
}
