package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
)

var (
	whoamiGroups bool
	whoamiAvatar string
	whoamiSystem bool
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user the configured credentials belong to",
	Example: `  wikiq whoami
  wikiq whoami --groups --system
  wikiq whoami --avatar me.png`,
	RunE: runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	_, client, _, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	user, err := client.Users().GetCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	fmt.Printf("👤 %s\n", user.DisplayName)
	fmt.Printf("   Account ID: %s\n", user.AccountID)
	if user.Email != "" {
		fmt.Printf("   Email: %s\n", user.Email)
	}
	if user.AccountType != "" {
		fmt.Printf("   Account type: %s\n", user.AccountType)
	}

	if whoamiGroups {
		groups, err := client.Users().GetGroupMemberships(ctx, user.AccountID, nil)
		if err != nil {
			return fmt.Errorf("failed to get group memberships: %w", err)
		}
		fmt.Printf("\n👥 Groups (%d):\n", len(groups.Results))
		for _, g := range groups.Results {
			fmt.Printf("   %s\n", g.Name)
		}
	}

	if whoamiSystem {
		info, err := client.Misc().GetSystemInfo(ctx)
		if err != nil {
			return fmt.Errorf("failed to get system info: %w", err)
		}
		fmt.Printf("\n🖥️  System:\n")
		if info == nil {
			fmt.Printf("   not available on this server\n")
		} else {
			fmt.Printf("   Site: %s\n", info.SiteTitle)
			fmt.Printf("   Base URL: %s\n", info.BaseURL)
			if info.Edition != "" {
				fmt.Printf("   Edition: %s\n", info.Edition)
			}
		}
	}

	if whoamiAvatar != "" {
		if user.ProfilePicture == nil {
			return fmt.Errorf("user has no profile picture")
		}
		body, err := client.Misc().GetPicture(ctx, *user.ProfilePicture)
		if err != nil {
			return fmt.Errorf("failed to download profile picture: %w", err)
		}
		defer body.Close()

		f, err := os.Create(whoamiAvatar)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", whoamiAvatar, err)
		}
		n, err := io.Copy(f, body)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", whoamiAvatar, err)
		}
		fmt.Printf("\nSaved profile picture to %s (%d bytes)\n", whoamiAvatar, n)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(whoamiCmd)

	whoamiCmd.Flags().BoolVarP(&whoamiGroups, "groups", "g", false, "List the groups the user belongs to")
	whoamiCmd.Flags().StringVar(&whoamiAvatar, "avatar", "", "Save the profile picture to this file")
	whoamiCmd.Flags().BoolVar(&whoamiSystem, "system", false, "Show server system information")
}
