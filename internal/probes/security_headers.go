package probes

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// headerCheck describes one security header: the weight it contributes to
// the overall score and how its value is validated.
type headerCheck struct {
	name           string
	severity       string
	weight         int
	recommendation string
	// validate inspects a present header value and returns an issue
	// description when the value is weak, or "" when acceptable
	validate func(value string) string
}

// securityHeaderChecks is evaluated in order; the order fixes the finding
// sequence so reports are stable.
var securityHeaderChecks = []headerCheck{
	{
		name:           "Strict-Transport-Security",
		severity:       types.SeverityHigh,
		weight:         25,
		recommendation: "Add Strict-Transport-Security with a max-age of at least one year",
		validate: func(value string) string {
			if !strings.Contains(value, "max-age=") {
				return "HSTS header missing max-age directive"
			}

			if maxAge := parseHSTSMaxAge(value); maxAge > 0 && maxAge < 31536000 {
				return fmt.Sprintf("HSTS max-age is only %d seconds; one year or more is recommended", maxAge)
			}

			if !strings.Contains(strings.ToLower(value), "includesubdomains") {
				return "HSTS header does not cover subdomains"
			}

			return ""
		},
	},
	{
		name:           "Content-Security-Policy",
		severity:       types.SeverityHigh,
		weight:         25,
		recommendation: "Add a Content-Security-Policy restricting script sources",
		validate: func(value string) string {
			if strings.Contains(value, "unsafe-inline") || strings.Contains(value, "unsafe-eval") {
				return "CSP contains unsafe-inline or unsafe-eval directives"
			}

			return ""
		},
	},
	{
		name:           "X-Frame-Options",
		severity:       types.SeverityMedium,
		weight:         15,
		recommendation: "Set X-Frame-Options to DENY or SAMEORIGIN to prevent clickjacking",
		validate: func(value string) string {
			upper := strings.ToUpper(strings.TrimSpace(value))
			if upper != "DENY" && upper != "SAMEORIGIN" {
				return fmt.Sprintf("X-Frame-Options has weak value: %s", value)
			}

			return ""
		},
	},
	{
		name:           "X-Content-Type-Options",
		severity:       types.SeverityMedium,
		weight:         15,
		recommendation: "Set X-Content-Type-Options to nosniff",
		validate: func(value string) string {
			if strings.ToLower(strings.TrimSpace(value)) != "nosniff" {
				return fmt.Sprintf("X-Content-Type-Options should be 'nosniff', got: %s", value)
			}

			return ""
		},
	},
	{
		name:           "Referrer-Policy",
		severity:       types.SeverityLow,
		weight:         10,
		recommendation: "Add a Referrer-Policy header to limit referrer leakage",
		validate:       func(string) string { return "" },
	},
	{
		name:           "Permissions-Policy",
		severity:       types.SeverityLow,
		weight:         5,
		recommendation: "Add a Permissions-Policy header to restrict browser features",
		validate:       func(string) string { return "" },
	},
	{
		name:           "X-XSS-Protection",
		severity:       types.SeverityLow,
		weight:         5,
		recommendation: "Set X-XSS-Protection to 0; the legacy auditor introduces vulnerabilities",
		validate: func(value string) string {
			if strings.TrimSpace(value) != "0" {
				return "X-XSS-Protection should be 0; the legacy XSS auditor is exploitable"
			}

			return ""
		},
	},
}

// SecurityHeaders grades the target's HTTP response headers against the
// common browser security header set.
type SecurityHeaders struct {
	// Timeout bounds the request
	Timeout time.Duration
	// Client overrides the default HTTP client, used by tests
	Client *http.Client
}

// NewSecurityHeaders creates a SecurityHeaders probe with default settings.
func NewSecurityHeaders() *SecurityHeaders {
	return &SecurityHeaders{Timeout: defaultHTTPTimeout}
}

// Scan implements the Probe contract.
func (p *SecurityHeaders) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: p.Timeout}
	}

	resp, err := p.fetch(ctx, client, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHTTPService, err)
	}

	_ = resp.Body.Close()

	return gradeSecurityHeaders(resp.Header), nil
}

// fetch requests the site root, preferring HTTPS since several headers
// only apply to secure contexts.
func (p *SecurityHeaders) fetch(ctx context.Context, client *http.Client, target string) (*http.Response, error) {
	var lastErr error

	for _, scheme := range []string{"https", "http"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s://%s", scheme, target), nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("User-Agent", defaultUserAgent)

		resp, err := client.Do(req)
		if err == nil {
			return resp, nil
		}

		lastErr = err
	}

	return nil, lastErr
}

// gradeSecurityHeaders evaluates the header set, producing per-header
// findings plus an overall grade finding placed first.
func gradeSecurityHeaders(headers http.Header) *types.ProbeData {
	data := newProbeData()

	present := make(map[string]string)
	score := 0

	for _, check := range securityHeaderChecks {
		value := headers.Get(check.name)

		if value == "" {
			data.Findings = append(data.Findings, types.Finding{
				Severity:       check.severity,
				Title:          fmt.Sprintf("Missing %s header", check.name),
				Description:    fmt.Sprintf("The %s header is not set", check.name),
				Recommendation: check.recommendation,
			})

			continue
		}

		present[check.name] = value

		if issue := check.validate(value); issue != "" {
			data.Findings = append(data.Findings, types.Finding{
				Severity:       check.severity,
				Title:          fmt.Sprintf("Weak %s header", check.name),
				Description:    issue,
				Recommendation: check.recommendation,
			})

			continue
		}

		score += check.weight
	}

	grade := scoreToGrade(score)

	gradeFinding := types.Finding{
		Severity:    gradeSeverity(grade),
		Title:       fmt.Sprintf("Security header grade: %s", grade),
		Description: fmt.Sprintf("%d of %d security headers configured, score %d/100", len(present), len(securityHeaderChecks), score),
	}

	data.Findings = append([]types.Finding{gradeFinding}, data.Findings...)

	data.Metadata["security_headers"] = present
	data.Metadata["score"] = score
	data.Metadata["grade"] = grade

	return data
}

// parseHSTSMaxAge extracts the max-age directive value in seconds.
func parseHSTSMaxAge(value string) int {
	for _, directive := range strings.Split(value, ";") {
		directive = strings.TrimSpace(strings.ToLower(directive))

		if seconds, ok := strings.CutPrefix(directive, "max-age="); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(seconds)); err == nil {
				return n
			}
		}
	}

	return 0
}

// scoreToGrade converts a 0-100 score into a letter grade.
func scoreToGrade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 65:
		return "B"
	case score >= 50:
		return "C"
	case score >= 35:
		return "D"
	default:
		return "F"
	}
}

// gradeSeverity maps the overall grade to a finding severity.
func gradeSeverity(grade string) string {
	switch grade {
	case "A+", "A":
		return types.SeverityInfo
	case "B", "C":
		return types.SeverityMedium
	default:
		return types.SeverityHigh
	}
}
