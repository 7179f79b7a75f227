package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/docarc/internal/config"
	"github.com/nao1215/docarc/internal/controller"
	"github.com/nao1215/docarc/internal/log"
	"github.com/nao1215/docarc/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show archive statistics without touching the network",
		Long: `Stats reports what the archive holds: tracked files by status, dataset
coverage, what is actually on disk, and the recent run history.

It reads only local data and never contacts the remote repository.

Examples:
  # Human-readable summary
  docarc stats

  # JSON for tooling
  docarc stats --json

  # Markdown report written to a file
  docarc stats --markdown -o stats.md`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().String("data-dir", "",
		"Directory for payloads and state (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOut && markdownOut {
		return fmt.Errorf("--json and --markdown are mutually exclusive")
	}

	cfg := config.NewConfig()
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	cfg.Verbose = getVerboseFlag(cmd)

	logger := log.NewLogger(os.Stderr, cfg.Verbose)

	ctrl, err := controller.New(cfg, logger)
	if err != nil {
		return err
	}
	rep, err := ctrl.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out, closeOut, err := statsOutput(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	var w report.Writer
	switch {
	case jsonOut:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOut:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}

	if _, err := w.Write(rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// statsOutput resolves the report destination: a file when --output is
// set, stdout otherwise.
func statsOutput(cmd *cobra.Command) (io.Writer, func(), error) {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
