package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/philong6297/endnotes/internal/model"
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

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables per-page detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-page details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.SiteReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeFindings(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SiteReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         ENDNOTES REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Site Directory: %s\n", report.SiteDir))
	sb.WriteString(fmt.Sprintf("Run Date:       %s\n", report.DateProcessed.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", report.Duration.Round(time.Millisecond)))

	if report.DryRun {
		sb.WriteString("Mode:           DRY RUN (no files rewritten)\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the page and severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.SiteReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages found:    %d\n", len(report.Pages)))
	sb.WriteString(fmt.Sprintf("  Processed:      %d\n", report.PagesProcessed()))
	sb.WriteString(fmt.Sprintf("  Modified:       %d\n", report.PagesModified()))
	sb.WriteString(fmt.Sprintf("  Skipped:        %d\n", report.PagesSkipped()))
	sb.WriteString(fmt.Sprintf("  Failed:         %d\n", report.PagesFailed()))
	sb.WriteString("\n")

	if total := report.TotalFindings(); total > 0 || w.showEmpty {
		sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", report.CountBySeverity(model.SeverityCritical)))
		sb.WriteString(fmt.Sprintf("  HIGH:     %d\n", report.CountBySeverity(model.SeverityHigh)))
		sb.WriteString(fmt.Sprintf("  MEDIUM:   %d\n", report.CountBySeverity(model.SeverityMedium)))
		sb.WriteString(fmt.Sprintf("  LOW:      %d\n", report.CountBySeverity(model.SeverityLow)))
		sb.WriteString(fmt.Sprintf("  INFO:     %d\n", report.CountBySeverity(model.SeverityInfo)))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  TOTAL:    %d findings\n", total))
		sb.WriteString("\n")
	}
}

// writePages writes per-page details for modified and failed pages.
// Unmodified pages are listed only in verbose mode.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.SiteReport) {
	interesting := make([]*model.PageReport, 0)
	for _, p := range report.Pages {
		if p == nil {
			continue
		}
		if p.Modified || p.Error != nil || w.verbose {
			interesting = append(interesting, p)
		}
	}

	if len(interesting) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(interesting) == 0 {
		sb.WriteString("  No pages were modified\n\n")
		return
	}

	for _, p := range interesting {
		switch {
		case p.Error != nil:
			sb.WriteString(fmt.Sprintf("  [!] %s\n", p.Path))
			sb.WriteString(fmt.Sprintf("      Error: %s\n", p.ErrorMessage))
		case p.Skipped:
			sb.WriteString(fmt.Sprintf("  [=] %s (unchanged)\n", p.Path))
		case p.Modified:
			sb.WriteString(fmt.Sprintf("  [+] %s\n", p.Path))
			if len(p.AppliedTransforms) > 0 {
				labels := transformLabels(p.AppliedTransforms)
				sb.WriteString(fmt.Sprintf("      Applied: %s\n", strings.Join(labels, ", ")))
			}
		default:
			sb.WriteString(fmt.Sprintf("  [ ] %s\n", p.Path))
		}
	}
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by severity.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.SiteReport) {
	if !report.HasFindings() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	// Write findings in order of severity (critical first)
	severities := []model.Severity{
		model.SeverityCritical,
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
		model.SeverityInfo,
	}

	for _, severity := range severities {
		findings := report.FindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}

		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	indicator := w.getSeverityIndicator(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, severity.String()))

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		sb.WriteString(fmt.Sprintf("  * %s\n", finding.Title))
		if finding.Value != "" {
			sb.WriteString(fmt.Sprintf("    Value: %s\n", finding.Value))
		}
		if finding.Location != "" {
			sb.WriteString(fmt.Sprintf("    Location: %s\n", finding.Location))
		}
		if w.verbose && finding.Description != "" {
			sb.WriteString(fmt.Sprintf("    Description: %s\n", finding.Description))
		}
		if w.verbose && finding.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("    Recommendation: %s\n", finding.Recommendation))
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!! "
	case model.SeverityMedium:
		return "!  "
	case model.SeverityLow:
		return "-  "
	default:
		return "i  "
	}
}
