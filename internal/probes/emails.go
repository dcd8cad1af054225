package probes

import (
	"context"
	"fmt"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/emailauth"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// issueSeverities maps email authentication issue categories to finding
// severities.
var issueSeverities = map[string]string{
	"missing_spf":   types.SeverityHigh,
	"weak_spf":      types.SeverityMedium,
	"missing_dmarc": types.SeverityHigh,
	"weak_dmarc":    types.SeverityMedium,
	"missing_dkim":  types.SeverityMedium,
}

// Emails evaluates the target's email authentication posture: SPF policy,
// DMARC enforcement, and DKIM selector presence.
type Emails struct {
	// Analyzer performs the DNS lookups and grading
	Analyzer *emailauth.Analyzer
}

// NewEmails creates an Emails probe with default analyzer settings.
func NewEmails() *Emails {
	return &Emails{Analyzer: emailauth.NewAnalyzer()}
}

// Scan implements the Probe contract.
func (p *Emails) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	result, issues, err := p.Analyzer.Analyze(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("email authentication analysis: %w", err)
	}

	data.Findings = append(data.Findings, types.Finding{
		Severity:    emailGradeSeverity(result.Grade),
		Title:       fmt.Sprintf("Email authentication grade: %s", result.Grade),
		Description: emailGradeSummary(result),
	})

	for _, issue := range issues {
		severity, ok := issueSeverities[issue.Category]
		if !ok {
			severity = types.SeverityLow
		}

		data.Findings = append(data.Findings, types.Finding{
			Severity:       severity,
			Title:          issueTitle(issue.Category),
			Description:    issue.Description,
			Recommendation: issueRecommendation(issue.Category),
		})
	}

	data.Metadata["email_auth"] = result

	return data, nil
}

// emailGradeSeverity maps the overall grade to a finding severity.
func emailGradeSeverity(grade string) string {
	switch grade {
	case "A", "B":
		return types.SeverityInfo
	case "C":
		return types.SeverityMedium
	default:
		return types.SeverityHigh
	}
}

// emailGradeSummary summarizes which mechanisms are configured.
func emailGradeSummary(result *emailauth.Result) string {
	return fmt.Sprintf("SPF configured: %v, DMARC configured: %v, DKIM selectors found: %d of %d checked",
		result.SPF.Found, result.DMARC.Found, len(result.DKIM.SelectorsFound), result.DKIM.SelectorsChecked)
}

// issueTitle returns a display title for an issue category.
func issueTitle(category string) string {
	switch category {
	case "missing_spf":
		return "No SPF record"
	case "weak_spf":
		return "Permissive SPF policy"
	case "missing_dmarc":
		return "No DMARC record"
	case "weak_dmarc":
		return "DMARC not enforced"
	case "missing_dkim":
		return "No DKIM signing detected"
	default:
		return "Email authentication issue"
	}
}

// issueRecommendation returns remediation guidance for an issue category.
func issueRecommendation(category string) string {
	switch category {
	case "missing_spf":
		return "Publish an SPF record listing authorized mail senders"
	case "weak_spf":
		return "Tighten the SPF all-mechanism to ~all or -all"
	case "missing_dmarc":
		return "Publish a DMARC record with at least p=none and a reporting address"
	case "weak_dmarc":
		return "Move the DMARC policy from p=none to p=quarantine or p=reject"
	case "missing_dkim":
		return "Enable DKIM signing on the domain's mail provider"
	default:
		return ""
	}
}
