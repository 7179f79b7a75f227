// Package main provides the entry point for the docarc CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for docarc.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docarc",
		Short: "Resumable archiver for paginated document repositories",
		Long: `docarc archives public document repositories that publish their files
as numbered datasets with paginated listing pages.

It discovers every dataset, walks each dataset's pages to extract
document links, and downloads every file exactly once with content
verification. All progress is saved continuously: an interrupted run
resumes from where it stopped instead of starting over.

Every request is preceded by a randomized politeness delay.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewDiscoverAllCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewCleanupCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
