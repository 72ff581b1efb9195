package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
	"wikiq/pkg/cql"
)

var (
	watchSpace   string
	watchProject string
	watchUser    string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check, add and remove watches on content, spaces and labels",
	Long: `Manage watches. KIND is one of content, space or label. For content the
TARGET is a page ID or a title in the space given by --space or --project.

Watches act on the authenticated user unless --user names an account id.`,
	Example: `  wikiq watch status content 123456
  wikiq watch add space DOCS
  wikiq watch remove label release --user 5b10ac8d82e05b22cc7d4ef5`,
}

var watchStatusCmd = &cobra.Command{
	Use:   "status KIND TARGET",
	Short: "Report whether the user watches the target",
	Args:  cobra.ExactArgs(2),
	RunE:  runWatchStatus,
}

var watchAddCmd = &cobra.Command{
	Use:   "add KIND TARGET",
	Short: "Start watching the target",
	Args:  cobra.ExactArgs(2),
	RunE:  runWatchAdd,
}

var watchRemoveCmd = &cobra.Command{
	Use:   "remove KIND TARGET",
	Short: "Stop watching the target",
	Args:  cobra.ExactArgs(2),
	RunE:  runWatchRemove,
}

// watchTarget is a resolved watch subject.
type watchTarget struct {
	kind  confluence.WatchKind
	id    string
	label string
}

func (w watchTarget) String() string {
	return fmt.Sprintf("%s '%s'", w.kind, w.label)
}

func resolveWatchTarget(cmd *cobra.Command, args []string) (context.Context, confluence.ConfluenceClient, watchTarget, error) {
	kind := confluence.WatchKind(args[0])
	switch kind {
	case confluence.WatchContent, confluence.WatchSpace, confluence.WatchLabel:
	default:
		return nil, nil, watchTarget{}, fmt.Errorf("unknown watch kind '%s' (expected content, space or label)", args[0])
	}

	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		return nil, nil, watchTarget{}, err
	}
	ctx := commandContext(cmd)

	target := watchTarget{kind: kind, id: args[1], label: args[1]}
	switch kind {
	case confluence.WatchContent:
		spaceKey, err := resolveSpace(cfg, watchSpace, watchProject)
		if err != nil {
			return nil, nil, watchTarget{}, err
		}
		page, err := findContent(ctx, client, log, spaceKey, args[1])
		if err != nil {
			return nil, nil, watchTarget{}, err
		}
		target.id, target.label = page.ID, page.Title
	case confluence.WatchLabel:
		name, err := cql.NormalizeLabel(args[1])
		if err != nil {
			return nil, nil, watchTarget{}, err
		}
		target.id, target.label = name, name
	}
	return ctx, client, target, nil
}

func runWatchStatus(cmd *cobra.Command, args []string) error {
	ctx, client, target, err := resolveWatchTarget(cmd, args)
	if err != nil {
		return err
	}

	var watching bool
	switch target.kind {
	case confluence.WatchContent:
		watching, err = client.Users().IsContentWatcher(ctx, target.id, watchUser)
	case confluence.WatchSpace:
		watching, err = client.Users().IsSpaceWatcher(ctx, target.id, watchUser)
	case confluence.WatchLabel:
		watching, err = client.Users().IsLabelWatcher(ctx, target.id, watchUser)
	}
	if err != nil {
		return fmt.Errorf("failed to check watch: %w", err)
	}

	if watching {
		fmt.Printf("👀 Watching %s\n", target)
	} else {
		fmt.Printf("🙈 Not watching %s\n", target)
	}
	return nil
}

func runWatchAdd(cmd *cobra.Command, args []string) error {
	ctx, client, target, err := resolveWatchTarget(cmd, args)
	if err != nil {
		return err
	}

	switch target.kind {
	case confluence.WatchContent:
		err = client.Users().AddContentWatcher(ctx, target.id, watchUser)
	case confluence.WatchSpace:
		err = client.Users().AddSpaceWatcher(ctx, target.id, watchUser)
	case confluence.WatchLabel:
		err = client.Users().AddLabelWatcher(ctx, target.id, watchUser)
	}
	if err != nil {
		return fmt.Errorf("failed to add watch: %w", err)
	}
	fmt.Printf("Now watching %s\n", target)
	return nil
}

func runWatchRemove(cmd *cobra.Command, args []string) error {
	ctx, client, target, err := resolveWatchTarget(cmd, args)
	if err != nil {
		return err
	}

	switch target.kind {
	case confluence.WatchContent:
		err = client.Users().RemoveContentWatcher(ctx, target.id, watchUser)
	case confluence.WatchSpace:
		err = client.Users().RemoveSpaceWatcher(ctx, target.id, watchUser)
	case confluence.WatchLabel:
		err = client.Users().RemoveLabelWatcher(ctx, target.id, watchUser)
	}
	if err != nil {
		return fmt.Errorf("failed to remove watch: %w", err)
	}
	fmt.Printf("Stopped watching %s\n", target)
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.AddCommand(watchStatusCmd, watchAddCmd, watchRemoveCmd)

	watchCmd.PersistentFlags().StringVarP(&watchSpace, "space", "s", "", "Confluence space key used to resolve page titles")
	watchCmd.PersistentFlags().StringVarP(&watchProject, "project", "P", "", "Project name defined in config to infer space")
	watchCmd.PersistentFlags().StringVarP(&watchUser, "user", "u", "", "Account id to act for (default: authenticated user)")
}
