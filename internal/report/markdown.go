package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/docarc/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.StatsReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeFileCounts(md, report)
	w.writeCoverage(md, report)
	w.writeRuns(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.StatsReport) {
	md.H1("Archive Statistics")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Archive Created", report.StateCreatedAt.Format("2006-01-02 15:04:05 MST")},
			{"On Disk", fmt.Sprintf("%d files, %s", report.LocalFileCount, humanBytes(report.LocalSizeBytes))},
		},
	})
	md.PlainText("")
}

// writeFileCounts writes tracked file totals by status.
func (w *MarkdownWriter) writeFileCounts(md *markdown.Markdown, report *model.StatsReport) {
	md.H2("Tracked Files")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows: [][]string{
			{"Discovered", strconv.Itoa(report.TotalDiscovered)},
			{"Downloaded", strconv.Itoa(report.TotalDownloaded)},
			{"Skipped", strconv.Itoa(report.TotalSkipped)},
			{"Failed", strconv.Itoa(report.TotalFailed)},
			{"Pending", strconv.Itoa(report.TotalPending)},
		},
	})
	md.PlainText("")

	if report.TotalDiscovered > 0 {
		w.writePieChart(md, report)
	}
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for the status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.StatsReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("File Status Distribution"),
		piechart.WithShowData(true),
	)

	if report.TotalDownloaded > 0 {
		chart.LabelAndIntValue("Downloaded", uint64(report.TotalDownloaded))
	}
	if report.TotalSkipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(report.TotalSkipped))
	}
	if report.TotalFailed > 0 {
		chart.LabelAndIntValue("Failed", uint64(report.TotalFailed))
	}
	if report.TotalPending > 0 {
		chart.LabelAndIntValue("Pending", uint64(report.TotalPending))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert summarizing how complete the archive is.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.StatsReport) {
	switch {
	case report.TotalDiscovered == 0:
		md.Note("Nothing discovered yet. Run the discover-all command first.")
	case report.TotalPending > 0:
		md.Importantf(
			"%d file(s) still pending download. Re-run to continue archiving.",
			report.TotalPending,
		)
	case report.TotalFailed > 0:
		md.Warningf(
			"%d file(s) failed their last attempt and will be retried on the next run.",
			report.TotalFailed,
		)
	default:
		md.Tip("Every discovered file has been archived.")
	}
	md.PlainText("")
}

// writeCoverage writes the dataset coverage section.
func (w *MarkdownWriter) writeCoverage(md *markdown.Markdown, report *model.StatsReport) {
	md.H2("Dataset Coverage")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Datasets Scanned", strconv.Itoa(len(report.DatasetsScanned))},
			{"Highest Dataset", strconv.Itoa(report.MaxDatasetFound)},
		},
	})
	md.PlainText("")
}

// writeRuns writes the recent run history.
func (w *MarkdownWriter) writeRuns(md *markdown.Markdown, report *model.StatsReport) {
	if len(report.RecentRuns) == 0 {
		return
	}

	md.H2("Recent Runs")
	md.PlainText("")

	rows := make([][]string, 0, len(report.RecentRuns))
	for _, run := range report.RecentRuns {
		status := "complete"
		if run.Interrupted {
			status = "interrupted"
		}
		rows = append(rows, []string{
			run.StartedAt.Format("2006-01-02 15:04"),
			run.Mode,
			status,
			strconv.Itoa(run.FilesDownloaded),
			strconv.Itoa(run.FilesFailed),
			run.Duration().Round(time.Second).String(),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Started", "Mode", "Status", "Downloaded", "Failed", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}
