package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/docarc/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-dataset listing in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.StatsReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeFileCounts(&sb, report)
	w.writeCoverage(&sb, report)
	w.writeDisk(&sb, report)
	w.writeRuns(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.StatsReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         ARCHIVE STATISTICS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Generated:        %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	if !report.StateCreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Archive Created:  %s\n", report.StateCreatedAt.Format("2006-01-02 15:04:05 MST")))
	}
	sb.WriteString("\n")
}

// writeFileCounts writes tracked file totals by status.
func (w *SimpleWriter) writeFileCounts(sb *strings.Builder, report *model.StatsReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TRACKED FILES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Discovered: %d\n", report.TotalDiscovered))
	sb.WriteString(fmt.Sprintf("  Downloaded: %d\n", report.TotalDownloaded))
	sb.WriteString(fmt.Sprintf("  Skipped:    %d\n", report.TotalSkipped))
	sb.WriteString(fmt.Sprintf("  Failed:     %d\n", report.TotalFailed))
	sb.WriteString(fmt.Sprintf("  Pending:    %d\n", report.TotalPending))
	sb.WriteString("\n")
}

// writeCoverage writes the dataset coverage section.
func (w *SimpleWriter) writeCoverage(sb *strings.Builder, report *model.StatsReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DATASET COVERAGE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Datasets scanned:  %d\n", len(report.DatasetsScanned)))
	sb.WriteString(fmt.Sprintf("  Highest dataset:   %d\n", report.MaxDatasetFound))
	if w.verbose && len(report.DatasetsScanned) > 0 {
		ids := make([]string, len(report.DatasetsScanned))
		for i, id := range report.DatasetsScanned {
			ids[i] = fmt.Sprintf("%d", id)
		}
		sb.WriteString(fmt.Sprintf("  Scanned ids:       %s\n", strings.Join(ids, ", ")))
	}
	sb.WriteString("\n")
}

// writeDisk writes the on-disk totals.
func (w *SimpleWriter) writeDisk(sb *strings.Builder, report *model.StatsReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ON DISK\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Files: %d\n", report.LocalFileCount))
	sb.WriteString(fmt.Sprintf("  Size:  %s\n", humanBytes(report.LocalSizeBytes)))
	sb.WriteString("\n")
}

// writeRuns writes the recent run history, newest first.
func (w *SimpleWriter) writeRuns(sb *strings.Builder, report *model.StatsReport) {
	if len(report.RecentRuns) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RECENT RUNS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, run := range report.RecentRuns {
		status := "complete"
		if run.Interrupted {
			status = "interrupted"
		}
		sb.WriteString(fmt.Sprintf("  %s  %-9s %-12s %d downloaded, %d failed\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			run.Mode,
			status,
			run.FilesDownloaded,
			run.FilesFailed,
		))
	}
	sb.WriteString("\n")
}

// humanBytes formats a byte count with a binary unit suffix.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
