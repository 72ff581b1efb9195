package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List configured projects",
	Long: `List projects defined in the configuration file. Shows the project name,
its Confluence space key, and the parent page that scopes searches. The first
project is the implicit default when no --space or --project is given.`,
	RunE: runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadForSearch(config.ResolveConfigPath(configFile))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(cfg.Projects) == 0 {
		fmt.Fprintln(out, "No projects defined (using confluence.space_key).")
		return nil
	}

	// Stable order by name; the first configured project stays the default.
	projects := make([]config.ProjectConfig, len(cfg.Projects))
	copy(projects, cfg.Projects)
	sort.SliceStable(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })

	fmt.Fprintln(out, "Configured Projects:")
	fmt.Fprintln(out)
	for _, p := range projects {
		defaultMarker := ""
		if cfg.Projects[0].Name == p.Name {
			defaultMarker = " (default)"
		}
		fmt.Fprintf(out, "- %s%s\n  space: %s\n", p.Name, defaultMarker, p.SpaceKey)
		if p.Parent != "" {
			fmt.Fprintf(out, "  parent: %s\n", p.Parent)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
