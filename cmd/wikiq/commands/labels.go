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
	labelsSpace   string
	labelsProject string
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List, add and remove page labels",
	Long: `Manage the labels of a page. PAGE is a page ID or a title in the space
given by --space or --project. Labels are stored in lower case and must not
contain whitespace.`,
}

var labelsListCmd = &cobra.Command{
	Use:   "list PAGE",
	Short: "List the labels of a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runLabelsList,
}

var labelsAddCmd = &cobra.Command{
	Use:     "add PAGE LABEL...",
	Short:   "Add one or more labels to a page",
	Example: `  wikiq labels add 123456 draft needs-review`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runLabelsAdd,
}

var labelsRemoveCmd = &cobra.Command{
	Use:   "remove PAGE LABEL...",
	Short: "Remove labels from a page",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runLabelsRemove,
}

func labelTarget(cmd *cobra.Command, pageArg string) (context.Context, confluence.ConfluenceClient, *confluence.Content, error) {
	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		return nil, nil, nil, err
	}
	spaceKey, err := resolveSpace(cfg, labelsSpace, labelsProject)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx := commandContext(cmd)
	page, err := findContent(ctx, client, log, spaceKey, pageArg)
	if err != nil {
		return nil, nil, nil, err
	}
	return ctx, client, page, nil
}

func printLabels(page *confluence.Content, labels []confluence.Label) {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	if len(names) == 0 {
		fmt.Printf("🏷️  '%s' (ID: %s) has no labels\n", page.Title, page.ID)
		return
	}
	fmt.Printf("🏷️  '%s' (ID: %s): %s\n", page.Title, page.ID, strings.Join(names, ", "))
}

func runLabelsList(cmd *cobra.Command, args []string) error {
	ctx, client, page, err := labelTarget(cmd, args[0])
	if err != nil {
		return err
	}
	labels, err := client.Contents().GetLabels(ctx, page.ID)
	if err != nil {
		return fmt.Errorf("failed to get labels: %w", err)
	}
	printLabels(page, labels.Results)
	return nil
}

func runLabelsAdd(cmd *cobra.Command, args []string) error {
	for _, l := range args[1:] {
		if _, err := cql.NormalizeLabel(l); err != nil {
			return err
		}
	}
	ctx, client, page, err := labelTarget(cmd, args[0])
	if err != nil {
		return err
	}
	labels, err := client.Contents().AddLabels(ctx, page.ID, args[1:]...)
	if err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}
	printLabels(page, labels.Results)
	return nil
}

func runLabelsRemove(cmd *cobra.Command, args []string) error {
	ctx, client, page, err := labelTarget(cmd, args[0])
	if err != nil {
		return err
	}
	for _, l := range args[1:] {
		name, err := cql.NormalizeLabel(l)
		if err != nil {
			return err
		}
		if err := client.Contents().DeleteLabel(ctx, page.ID, name); err != nil {
			return fmt.Errorf("failed to remove label '%s': %w", name, err)
		}
		fmt.Printf("Removed label '%s' from '%s'\n", name, page.Title)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(labelsCmd)
	labelsCmd.AddCommand(labelsListCmd, labelsAddCmd, labelsRemoveCmd)

	labelsCmd.PersistentFlags().StringVarP(&labelsSpace, "space", "s", "", "Confluence space key used to resolve page titles")
	labelsCmd.PersistentFlags().StringVarP(&labelsProject, "project", "P", "", "Project name defined in config to infer space")
}
