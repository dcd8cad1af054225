// Package report turns raw scan results into severity-ranked findings
// reports and renders them as JSON, Markdown, HTML, and PDF.
package report

import (
	"time"

	"github.com/samber/lo"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// Summary holds the finding counts of a report.
type Summary struct {
	// TotalFindings is the number of findings across all probes
	TotalFindings int `json:"total_findings"`
	// BySeverity counts findings per severity level
	BySeverity map[string]int `json:"by_severity"`
	// RiskLevel is the highest severity with at least one finding above info
	RiskLevel string `json:"risk_level"`
}

// ProbeStatusSummary groups probe names by outcome, in scan order.
type ProbeStatusSummary struct {
	// Successful lists probes that completed
	Successful []string `json:"successful"`
	// Skipped lists probes that were skipped (timeout or missing credential)
	Skipped []string `json:"skipped"`
	// Failed lists probes that errored
	Failed []string `json:"failed"`
}

// Report is the aggregated, render-ready view of a scan result.
type Report struct {
	// Target is the scanned domain
	Target string `json:"target"`
	// ScanTime is when the scan ran, RFC 3339
	ScanTime string `json:"scan_time"`
	// GeneratedAt is when the report was produced, RFC 3339
	GeneratedAt string `json:"generated_at"`
	// Summary holds the finding counts
	Summary Summary `json:"summary"`
	// Findings maps severity level to its findings, ordered by probe
	Findings map[string][]types.Finding `json:"findings"`
	// ProbeStatus groups probes by outcome
	ProbeStatus ProbeStatusSummary `json:"probe_status"`
	// Probes carries the raw per-probe outcomes
	Probes map[string]types.ProbeOutcome `json:"probes"`
}

// Aggregate builds a report from a scan result. probeOrder fixes the
// iteration order over the outcome map so repeated aggregation of the
// same result produces identical reports.
func Aggregate(result *types.ScanResult, probeOrder []string) *Report {
	report := &Report{
		Target:      result.Target,
		ScanTime:    result.ScanTime,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Findings:    make(map[string][]types.Finding),
		Probes:      result.Probes,
	}

	for _, severity := range types.SeverityOrder {
		report.Findings[severity] = make([]types.Finding, 0)
	}

	for _, name := range probeOrder {
		outcome, ok := result.Probes[name]
		if !ok {
			continue
		}

		switch outcome.Status {
		case types.StatusSuccess:
			report.ProbeStatus.Successful = append(report.ProbeStatus.Successful, name)
		case types.StatusSkipped:
			report.ProbeStatus.Skipped = append(report.ProbeStatus.Skipped, name)
		case types.StatusError:
			report.ProbeStatus.Failed = append(report.ProbeStatus.Failed, name)
		}

		if outcome.Data == nil {
			continue
		}

		for _, finding := range outcome.Data.Findings {
			severity := types.NormalizeSeverity(finding.Severity)

			if finding.Probe == "" {
				finding.Probe = name
			}

			report.Findings[severity] = append(report.Findings[severity], finding)
		}
	}

	report.Summary = summarize(report.Findings)

	return report
}

// summarize computes the finding counts and overall risk level.
func summarize(findings map[string][]types.Finding) Summary {
	summary := Summary{
		BySeverity: make(map[string]int, len(types.SeverityOrder)),
		RiskLevel:  types.SeverityInfo,
	}

	for _, severity := range types.SeverityOrder {
		summary.BySeverity[severity] = len(findings[severity])
	}

	summary.TotalFindings = lo.SumBy(types.SeverityOrder, func(severity string) int {
		return summary.BySeverity[severity]
	})

	for _, severity := range types.SeverityOrder {
		if severity == types.SeverityInfo {
			break
		}

		if summary.BySeverity[severity] > 0 {
			summary.RiskLevel = severity
			break
		}
	}

	return summary
}
