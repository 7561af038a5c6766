package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/philong6297/endnotes/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, for example
// as a build artifact attached to a CI run.
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

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SiteReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeFindings(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SiteReport) {
	md.H1("Endnotes Report")
	md.PlainText("")

	mode := "Rewrite"
	if report.DryRun {
		mode = "Dry run (no files rewritten)"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site Directory", "`" + report.SiteDir + "`"},
			{"Run Date", report.DateProcessed.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(time.Millisecond).String()},
			{"Mode", mode},
		},
	})
	md.PlainText("")
}

// writeSummary writes the page summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SiteReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Pages", "Count"},
		Rows: [][]string{
			{"Found", strconv.Itoa(len(report.Pages))},
			{"Processed", strconv.Itoa(report.PagesProcessed())},
			{"Modified", strconv.Itoa(report.PagesModified())},
			{"Skipped (unchanged)", strconv.Itoa(report.PagesSkipped())},
			{"Failed", strconv.Itoa(report.PagesFailed())},
		},
	})
	md.PlainText("")

	if report.HasFindings() {
		md.Table(markdown.TableSet{
			Header: []string{"Severity", "Count"},
			Rows: [][]string{
				{"🔴 Critical", strconv.Itoa(report.CountBySeverity(model.SeverityCritical))},
				{"🟠 High", strconv.Itoa(report.CountBySeverity(model.SeverityHigh))},
				{"🟡 Medium", strconv.Itoa(report.CountBySeverity(model.SeverityMedium))},
				{"🔵 Low", strconv.Itoa(report.CountBySeverity(model.SeverityLow))},
				{"⚪ Info", strconv.Itoa(report.CountBySeverity(model.SeverityInfo))},
				{"**Total**", "**" + strconv.Itoa(report.TotalFindings()) + "**"},
			},
		})
		md.PlainText("")
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.SiteReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	severities := []struct {
		level model.Severity
		label string
	}{
		{model.SeverityCritical, "Critical"},
		{model.SeverityHigh, "High"},
		{model.SeverityMedium, "Medium"},
		{model.SeverityLow, "Low"},
		{model.SeverityInfo, "Info"},
	}

	for _, sev := range severities {
		if count := report.CountBySeverity(sev.level); count > 0 {
			chart.LabelAndIntValue(sev.label, uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SiteReport) {
	switch {
	case report.CountBySeverity(model.SeverityCritical) > 0:
		md.Cautionf(
			"Critical privacy issues detected! %d critical finding(s) require attention before publishing.",
			report.CountBySeverity(model.SeverityCritical),
		)
	case report.CountBySeverity(model.SeverityHigh) > 0:
		md.Warningf(
			"High severity issues detected. %d high severity finding(s) should be addressed.",
			report.CountBySeverity(model.SeverityHigh),
		)
	case report.PagesFailed() > 0:
		md.Warningf("%d page(s) failed to process.", report.PagesFailed())
	case report.TotalFindings() > 0:
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tipf("%d page(s) rewritten without issues.", report.PagesModified())
	}
	md.PlainText("")
}

// writePages writes the per-page results section.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.SiteReport) {
	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Pages))
	for _, p := range report.Pages {
		if p == nil {
			continue
		}
		rows = append(rows, []string{
			"`" + p.Path + "`",
			w.pageStatus(p),
			strings.Join(transformLabels(p.AppliedTransforms), ", "),
		})
	}

	if len(rows) == 0 {
		md.PlainText("No HTML pages found.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Status", "Applied"},
		Rows:   rows,
	})
	md.PlainText("")
}

// pageStatus returns the status text for a page row.
func (w *MarkdownWriter) pageStatus(p *model.PageReport) string {
	switch {
	case p.Error != nil:
		return "❌ " + truncateString(p.ErrorMessage, 50)
	case p.Skipped:
		return "⏭️ Unchanged"
	case p.Modified:
		return "✏️ Modified"
	default:
		return "✅ No changes needed"
	}
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.SiteReport) {
	md.H2("Findings")
	md.PlainText("")

	if !report.HasFindings() {
		md.PlainText("No privacy findings detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		findings := report.FindingsBySeverity(sev.level)
		if len(findings) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		value := f.Value
		if value == "" {
			value = "-"
		}
		location := f.Location
		if location == "" {
			location = "-"
		}
		rec := f.Recommendation
		if rec == "" {
			rec = "-"
		}

		rows[i] = []string{
			f.Title,
			truncateString(value, 50),
			truncateString(location, 40),
			truncateString(rec, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Value", "Location", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")
}
