package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
	"wikiq/pkg/logger"
)

var (
	attachmentsSpace   string
	attachmentsProject string
	attachmentsOutput  string
	attachmentsComment string
)

var attachmentsCmd = &cobra.Command{
	Use:   "attachments",
	Short: "List, download, upload and delete page attachments",
	Long: `Work with the attachments of a page. PAGE is a page ID or a title in the
space given by --space or --project.`,
}

var attachmentsListCmd = &cobra.Command{
	Use:   "list PAGE",
	Short: "List the attachments of a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttachmentsList,
}

var attachmentsDownloadCmd = &cobra.Command{
	Use:     "download PAGE NAME",
	Short:   "Download an attachment by file name",
	Example: `  wikiq attachments download 123456 diagram.png --output ./out`,
	Args:    cobra.ExactArgs(2),
	RunE:    runAttachmentsDownload,
}

var attachmentsUploadCmd = &cobra.Command{
	Use:   "upload PAGE FILE",
	Short: "Attach a file to a page, replacing the data of an attachment with the same name",
	Example: `  wikiq attachments upload "Release Notes" ./notes.pdf --space DOCS
  wikiq attachments upload 123456 diagram.png --comment "v2"`,
	Args: cobra.ExactArgs(2),
	RunE: runAttachmentsUpload,
}

var attachmentsDeleteCmd = &cobra.Command{
	Use:   "delete PAGE NAME",
	Short: "Delete an attachment by file name",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttachmentsDelete,
}

// attachmentTarget loads config and resolves the page the subcommand works on.
func attachmentTarget(cmd *cobra.Command, pageArg string) (context.Context, confluence.ConfluenceClient, *logger.Logger, *confluence.Content, error) {
	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	spaceKey, err := resolveSpace(cfg, attachmentsSpace, attachmentsProject)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ctx := commandContext(cmd)
	page, err := findContent(ctx, client, log, spaceKey, pageArg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return ctx, client, log, page, nil
}

func findAttachment(ctx context.Context, client confluence.ConfluenceClient, pageID, name string) (*confluence.Attachment, error) {
	for att, err := range client.Attachments().All(ctx, pageID) {
		if err != nil {
			return nil, fmt.Errorf("failed to list attachments: %w", err)
		}
		if att.Title == name {
			return att, nil
		}
	}
	return nil, nil
}

func runAttachmentsList(cmd *cobra.Command, args []string) error {
	ctx, client, _, page, err := attachmentTarget(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("📎 Attachments of '%s' (ID: %s):\n\n", page.Title, page.ID)
	count := 0
	for att, err := range client.Attachments().All(ctx, page.ID) {
		if err != nil {
			return fmt.Errorf("failed to list attachments: %w", err)
		}
		version := 0
		if att.Version != nil {
			version = att.Version.Number
		}
		fmt.Printf("   %s (ID: %s, %d bytes, v%d)\n", att.Title, att.ID, att.Extensions.FileSize, version)
		if u, err := client.Attachments().CreateDownloadURL(att.Links); err == nil {
			fmt.Printf("      %s\n", u)
		}
		count++
	}
	if count == 0 {
		fmt.Println("   📭 No attachments")
	}
	return nil
}

func runAttachmentsDownload(cmd *cobra.Command, args []string) error {
	ctx, client, log, page, err := attachmentTarget(cmd, args[0])
	if err != nil {
		return err
	}
	name := args[1]

	att, err := findAttachment(ctx, client, page.ID, name)
	if err != nil {
		return err
	}
	if att == nil {
		return fmt.Errorf("attachment '%s' not found on page '%s'", name, page.Title)
	}

	body, err := client.Attachments().GetContent(ctx, att)
	if err != nil {
		return fmt.Errorf("failed to download attachment: %w", err)
	}
	defer body.Close()

	if err := os.MkdirAll(attachmentsOutput, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	target := filepath.Join(attachmentsOutput, filepath.Base(att.Title))
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	log.Debug("Downloaded attachment %s to %s", att.ID, target)
	fmt.Printf("Downloaded '%s' to %s (%d bytes)\n", att.Title, target, n)
	return nil
}

func runAttachmentsUpload(cmd *cobra.Command, args []string) error {
	path := args[1]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; provide a single file", path)
	}

	ctx, client, log, page, err := attachmentTarget(cmd, args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	existing, err := findAttachment(ctx, client, page.ID, name)
	if err != nil {
		return err
	}

	if existing != nil {
		log.Debug("Updating existing attachment ID=%s", existing.ID)
		att, err := client.Attachments().UpdateData(ctx, page.ID, existing.ID, f, name, attachmentsComment)
		if err != nil {
			return fmt.Errorf("failed to update attachment: %w", err)
		}
		fmt.Printf("Updated attachment '%s' (ID: %s) on page '%s'\n", att.Title, att.ID, page.Title)
		return nil
	}

	result, err := client.Attachments().Attach(ctx, page.ID, f, name, attachmentsComment)
	if err != nil {
		return fmt.Errorf("failed to upload attachment: %w", err)
	}
	for _, att := range result.Results {
		fmt.Printf("Uploaded attachment '%s' (ID: %s) to page '%s'\n", att.Title, att.ID, page.Title)
	}
	return nil
}

func runAttachmentsDelete(cmd *cobra.Command, args []string) error {
	ctx, client, _, page, err := attachmentTarget(cmd, args[0])
	if err != nil {
		return err
	}
	att, err := findAttachment(ctx, client, page.ID, args[1])
	if err != nil {
		return err
	}
	if att == nil {
		return fmt.Errorf("attachment '%s' not found on page '%s'", args[1], page.Title)
	}
	if err := client.Attachments().Delete(ctx, att.ID); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	fmt.Printf("Deleted attachment '%s' (ID: %s)\n", att.Title, att.ID)
	return nil
}

func init() {
	rootCmd.AddCommand(attachmentsCmd)
	attachmentsCmd.AddCommand(attachmentsListCmd, attachmentsDownloadCmd, attachmentsUploadCmd, attachmentsDeleteCmd)

	attachmentsCmd.PersistentFlags().StringVarP(&attachmentsSpace, "space", "s", "", "Confluence space key used to resolve page titles")
	attachmentsCmd.PersistentFlags().StringVarP(&attachmentsProject, "project", "P", "", "Project name defined in config to infer space")
	attachmentsDownloadCmd.Flags().StringVarP(&attachmentsOutput, "output", "o", ".", "Directory to write the file to")
	attachmentsUploadCmd.Flags().StringVarP(&attachmentsComment, "comment", "m", "", "Attachment comment")
}
