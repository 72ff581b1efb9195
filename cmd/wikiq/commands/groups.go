package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
)

var (
	groupsMembers string
	groupsLimit   int
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List groups or the members of a group",
	Example: `  wikiq groups
  wikiq groups --members confluence-users`,
	RunE: runGroups,
}

func runGroups(cmd *cobra.Command, args []string) error {
	_, client, _, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	var paging *confluence.PagingInformation
	if groupsLimit > 0 {
		paging = &confluence.PagingInformation{Limit: groupsLimit}
	}

	if groupsMembers != "" {
		members, err := client.Groups().GetGroupMembers(ctx, groupsMembers, paging)
		if err != nil {
			return fmt.Errorf("failed to get members of %s: %w", groupsMembers, err)
		}
		fmt.Printf("👥 %s (%d members):\n", groupsMembers, len(members.Results))
		for _, u := range members.Results {
			fmt.Printf("   👤 %s (%s)\n", u.DisplayName, u.AccountID)
		}
		return nil
	}

	groups, err := client.Groups().GetGroups(ctx, paging)
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}
	for _, g := range groups.Results {
		fmt.Printf("👥 %s\n", g.Name)
	}
	fmt.Printf("\n%d group(s)\n", len(groups.Results))
	return nil
}

func init() {
	rootCmd.AddCommand(groupsCmd)

	groupsCmd.Flags().StringVarP(&groupsMembers, "members", "m", "", "List the members of this group")
	groupsCmd.Flags().IntVar(&groupsLimit, "limit", 0, "Maximum results (default 200)")
}
