package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/docarc/internal/config"
	"github.com/nao1215/docarc/internal/controller"
	"github.com/nao1215/docarc/internal/log"
)

// NewCleanupCmd creates the cleanup command.
func NewCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete the archive state and every downloaded file",
		Long: `Cleanup deletes the archive state file, its backup, the run history
database, and every downloaded payload. The next run starts from nothing.

This is destructive and asks for confirmation unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: runCleanupCmd,
	}

	cmd.Flags().String("data-dir", "",
		"Directory for payloads and state (default: XDG data directory)")
	cmd.Flags().BoolP("yes", "y", false,
		"Skip the confirmation prompt")

	return cmd
}

// runCleanupCmd executes the cleanup command.
func runCleanupCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	cfg.Verbose = getVerboseFlag(cmd)

	assumeYes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}

	if !assumeYes {
		fmt.Fprintf(cmd.OutOrStdout(),
			"This deletes all archive state and downloaded files under %s.\nContinue? [y/N]: ",
			cfg.DataDir)
		if !confirm(cmd) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	ctrl, err := controller.New(cfg, log.NewLogger(os.Stderr, cfg.Verbose))
	if err != nil {
		return err
	}
	if err := ctrl.Cleanup(true); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Archive state and downloads removed.")
	return nil
}

// confirm reads a yes/no answer from the command's input stream.
func confirm(cmd *cobra.Command) bool {
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
