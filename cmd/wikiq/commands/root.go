package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
)

var (
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wikiq",
	Short: "Query and manage Confluence content from the command line",
	Long: `wikiq talks to the Confluence REST API. It builds CQL queries from flags,
reads pages, spaces, users and groups, and manages labels, attachments and
watches.`,
	Example: `  wikiq search --space DOCS --label release --modified-within 168h
  wikiq get-page --space DOCS --page "Release Notes" --format markdown
  wikiq list-pages --space DOCS --parent "API"
  wikiq labels add 123456 draft review`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigFile, "path to configuration file (or set "+config.EnvConfig+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
