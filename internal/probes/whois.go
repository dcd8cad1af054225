package probes

import (
	"context"
	"fmt"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

const (
	// defaultWhoisTimeout bounds the WHOIS server round trip
	defaultWhoisTimeout = 15 * time.Second
	// newDomainThreshold flags domains registered very recently
	newDomainThreshold = 30 * 24 * time.Hour
	// recentDomainThreshold flags domains registered within the last year
	recentDomainThreshold = 365 * 24 * time.Hour
	// expiryWarningThreshold flags domains expiring soon
	expiryWarningThreshold = 30 * 24 * time.Hour
)

// Whois retrieves domain registration data and analyzes it for
// registration age, expiry risk, and contact exposure.
type Whois struct {
	// Timeout bounds the WHOIS query
	Timeout time.Duration

	// now is injectable for tests
	now func() time.Time
}

// NewWhois creates a Whois probe with default settings.
func NewWhois() *Whois {
	return &Whois{
		Timeout: defaultWhoisTimeout,
		now:     time.Now,
	}
}

// Scan implements the Probe contract. A WHOIS server that refuses the
// query or returns unparseable data is reported as a finding rather than
// a probe failure, since many TLDs rate-limit or gate WHOIS access.
func (p *Whois) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	client := whois.NewClient().SetTimeout(p.Timeout)

	raw, err := client.Whois(target)
	if err != nil {
		data.Findings = append(data.Findings, types.Finding{
			Severity:    types.SeverityLow,
			Title:       "WHOIS lookup failed",
			Description: fmt.Sprintf("Could not retrieve WHOIS data: %v", err),
		})

		return data, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		data.Findings = append(data.Findings, types.Finding{
			Severity:    types.SeverityLow,
			Title:       "WHOIS data unavailable",
			Description: fmt.Sprintf("WHOIS response could not be parsed: %v", err),
		})

		return data, nil
	}

	p.analyzeRegistration(&info, data)

	data.Metadata["registration"] = registrationSummary(&info)

	return data, nil
}

// analyzeRegistration derives findings from parsed WHOIS data.
func (p *Whois) analyzeRegistration(info *whoisparser.WhoisInfo, data *types.ProbeData) {
	if info.Domain == nil {
		return
	}

	now := p.now()

	if created := info.Domain.CreatedDateInTime; created != nil {
		age := now.Sub(*created)

		switch {
		case age < newDomainThreshold:
			data.Findings = append(data.Findings, types.Finding{
				Severity:       types.SeverityMedium,
				Title:          "Recently registered domain",
				Description:    fmt.Sprintf("Domain was registered %d days ago", int(age.Hours()/24)),
				Recommendation: "Newly registered domains are commonly used in phishing campaigns",
			})
		case age < recentDomainThreshold:
			data.Findings = append(data.Findings, types.Finding{
				Severity:    types.SeverityLow,
				Title:       "Domain registered within the last year",
				Description: fmt.Sprintf("Domain was registered on %s", created.Format("2006-01-02")),
			})
		}
	}

	if expires := info.Domain.ExpirationDateInTime; expires != nil {
		remaining := expires.Sub(now)

		if remaining > 0 && remaining < expiryWarningThreshold {
			data.Findings = append(data.Findings, types.Finding{
				Severity:       types.SeverityHigh,
				Title:          "Domain expiring soon",
				Description:    fmt.Sprintf("Domain registration expires in %d days", int(remaining.Hours()/24)),
				Recommendation: "Renew the domain before expiry to prevent takeover",
			})
		}

		if remaining <= 0 {
			data.Findings = append(data.Findings, types.Finding{
				Severity:       types.SeverityCritical,
				Title:          "Domain registration expired",
				Description:    fmt.Sprintf("Domain registration expired on %s", expires.Format("2006-01-02")),
				Recommendation: "Renew the domain immediately",
			})
		}
	}

	analyzeContactExposure(info, data)
}

// analyzeContactExposure checks whether registrant contact details are
// published or shielded by a privacy service.
func analyzeContactExposure(info *whoisparser.WhoisInfo, data *types.ProbeData) {
	registrant := info.Registrant
	if registrant == nil {
		return
	}

	if registrant.Email != "" || registrant.Phone != "" {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityLow,
			Title:          "Registrant contact details exposed",
			Description:    "WHOIS data exposes registrant contact information",
			Data:           map[string]string{"email": registrant.Email, "phone": registrant.Phone},
			Recommendation: "Consider enabling WHOIS privacy protection",
		})

		return
	}

	data.Findings = append(data.Findings, types.Finding{
		Severity:    types.SeverityInfo,
		Title:       "WHOIS privacy enabled",
		Description: "Registrant contact details are not exposed in WHOIS data",
	})
}

// registrationSummary extracts the stable fields of interest from the
// parsed WHOIS response.
func registrationSummary(info *whoisparser.WhoisInfo) map[string]any {
	summary := make(map[string]any)

	if info.Domain != nil {
		summary["status"] = info.Domain.Status
		summary["name_servers"] = info.Domain.NameServers
		summary["created"] = info.Domain.CreatedDate
		summary["updated"] = info.Domain.UpdatedDate
		summary["expires"] = info.Domain.ExpirationDate
		summary["dnssec"] = info.Domain.DNSSec
	}

	if info.Registrar != nil {
		summary["registrar"] = info.Registrar.Name
	}

	if info.Registrant != nil && info.Registrant.Organization != "" {
		summary["organization"] = info.Registrant.Organization
	}

	if info.Registrant != nil && info.Registrant.Country != "" {
		summary["country"] = info.Registrant.Country
	}

	return summary
}
