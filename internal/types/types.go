// Package types holds the shared data model for probe results and findings.
package types

// Severity levels for findings, ordered from most to least severe.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// SeverityOrder lists all severities in report order.
var SeverityOrder = []string{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// NormalizeSeverity maps unknown or empty severity values to info.
func NormalizeSeverity(severity string) string {
	switch severity {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return severity
	default:
		return SeverityInfo
	}
}

// Probe priority tags.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Terminal probe outcome statuses.
const (
	// StatusSuccess means the probe completed and produced a payload.
	StatusSuccess = "success"
	// StatusSkipped means the probe could not produce a result through no
	// fault of the target (missing credential or timeout).
	StatusSkipped = "skipped"
	// StatusError means the probe failed with an unexpected error.
	StatusError = "error"
)

// Finding represents a single security or informational observation
type Finding struct {
	Severity       string `json:"severity" example:"high" description:"Severity level (critical/high/medium/low/info)"`
	Title          string `json:"title" example:"Dangerous port open: 23" description:"Short summary of the finding"`
	Description    string `json:"description" description:"Human-readable description of the finding"`
	Data           any    `json:"data,omitempty" description:"Optional structured evidence"`
	Recommendation string `json:"recommendation,omitempty" description:"Suggested remediation"`
	// Probe is the originating probe name, attached by the aggregator.
	Probe string `json:"probe,omitempty"`
}

// ProbeData is the payload a probe produces on success
type ProbeData struct {
	Findings []Finding      `json:"findings"`
	Metadata map[string]any `json:"metadata,omitempty" description:"Probe-specific structured data"`
}

// ProbeOutcome is the terminal classification of one probe execution.
// Exactly one of Data or Error is populated depending on Status.
type ProbeOutcome struct {
	Priority string     `json:"priority" example:"critical"`
	Status   string     `json:"status" example:"success"`
	Data     *ProbeData `json:"data,omitempty"`
	Error    string     `json:"error,omitempty" example:"probe timed out after 60 seconds"`
}

// ScanResult contains all outcomes from scanning a target.
// The Probes map holds exactly one outcome per enabled probe.
type ScanResult struct {
	Target   string                  `json:"target" example:"example.com"`
	ScanTime string                  `json:"scan_time" example:"2025-01-15T10:30:00Z" description:"Scan start time in RFC3339 UTC"`
	Probes   map[string]ProbeOutcome `json:"probes"`
}
