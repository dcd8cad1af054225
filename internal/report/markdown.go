package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// severityHeadings maps severity levels to their report section titles.
var severityHeadings = map[string]string{
	types.SeverityCritical: "Critical Findings",
	types.SeverityHigh:     "High Severity Findings",
	types.SeverityMedium:   "Medium Severity Findings",
	types.SeverityLow:      "Low Severity Findings",
	types.SeverityInfo:     "Informational",
}

// RenderMarkdown writes the report as a Markdown document: an executive
// summary table followed by findings grouped by severity.
func RenderMarkdown(w io.Writer, report *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Reconnaissance Report: %s\n\n", report.Target)
	fmt.Fprintf(&b, "Scanned at %s, report generated at %s.\n\n", report.ScanTime, report.GeneratedAt)

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "- **Overall risk level:** %s\n", report.Summary.RiskLevel)
	fmt.Fprintf(&b, "- **Total findings:** %d\n\n", report.Summary.TotalFindings)

	b.WriteString("| Severity | Findings |\n|---|---|\n")

	for _, severity := range types.SeverityOrder {
		fmt.Fprintf(&b, "| %s | %d |\n", severity, report.Summary.BySeverity[severity])
	}

	b.WriteString("\n## Probe Status\n\n")
	fmt.Fprintf(&b, "- Successful: %s\n", joinOrNone(report.ProbeStatus.Successful))
	fmt.Fprintf(&b, "- Skipped: %s\n", joinOrNone(report.ProbeStatus.Skipped))
	fmt.Fprintf(&b, "- Failed: %s\n", joinOrNone(report.ProbeStatus.Failed))

	for _, severity := range types.SeverityOrder {
		findings := report.Findings[severity]
		if len(findings) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n", severityHeadings[severity])

		for _, finding := range findings {
			fmt.Fprintf(&b, "\n### %s\n\n", finding.Title)
			fmt.Fprintf(&b, "- **Probe:** %s\n", finding.Probe)

			if finding.Description != "" {
				fmt.Fprintf(&b, "- **Description:** %s\n", finding.Description)
			}

			if finding.Recommendation != "" {
				fmt.Fprintf(&b, "- **Recommendation:** %s\n", finding.Recommendation)
			}
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	return nil
}

// joinOrNone renders a probe name list, or a dash when empty.
func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "-"
	}

	return strings.Join(names, ", ")
}
