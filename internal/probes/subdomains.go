package probes

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

const (
	// defaultMaxSubdomains caps the number of wordlist candidates checked
	defaultMaxSubdomains = 50
	// subdomainLookupTimeout bounds each resolution attempt
	subdomainLookupTimeout = 3 * time.Second
	// takeoverCheckLimit caps how many discovered subdomains get a CNAME
	// takeover check
	takeoverCheckLimit = 20
)

// commonSubdomains is the wordlist probed against the target domain.
var commonSubdomains = []string{
	"www", "mail", "ftp", "admin", "api", "blog", "dev", "test", "staging",
	"demo", "app", "mobile", "m", "portal", "secure", "shop", "store",
	"support", "help", "docs", "cdn", "static", "assets", "img", "images",
	"vpn", "remote", "proxy", "gateway", "ns1", "ns2", "mx", "exchange",
	"owa", "webmail", "cpanel", "phpmyadmin", "mysql", "db", "database",
	"git", "svn", "jenkins", "ci", "build", "monitoring", "grafana",
	"kibana", "elastic", "prometheus", "metrics", "logs", "status",
}

// interestingSubdomainContexts maps sensitive subdomain labels to a short
// description of what they typically expose.
var interestingSubdomainContexts = map[string]string{
	"admin":      "Administrative interface",
	"api":        "API endpoint",
	"auth":       "Authentication service",
	"backup":     "Backup service",
	"cpanel":     "Control panel",
	"db":         "Database service",
	"dev":        "Development environment",
	"ftp":        "File transfer service",
	"git":        "Source control",
	"jenkins":    "CI/CD service",
	"mail":       "Email service",
	"phpmyadmin": "Database administration",
	"staging":    "Staging environment",
	"test":       "Testing environment",
	"vpn":        "VPN service",
	"prometheus": "Monitoring service",
	"grafana":    "Metrics dashboard",
	"kibana":     "Log analysis",
	"elastic":    "Search service",
	"consul":     "Service discovery",
	"vault":      "Secrets management",
}

// takeoverCNAMEPatterns lists external hosting suffixes where a dangling
// CNAME indicates a claimable subdomain. Based on can-i-take-over-xyz.
var takeoverCNAMEPatterns = map[string]string{
	".elasticbeanstalk.com": "AWS Elastic Beanstalk",
	".s3.amazonaws.com":     "AWS S3",
	".cloudapp.azure.com":   "Azure",
	".cloudapp.net":         "Azure",
	".azurewebsites.net":    "Azure",
	".bitbucket.io":         "Bitbucket",
	".fastly.net":           "Fastly",
	".ghost.io":             "Ghost",
	".github.io":            "GitHub Pages",
	".gitlab.io":            "GitLab Pages",
	".herokuapp.com":        "Heroku",
	".pantheonsite.io":      "Pantheon",
	".myshopify.com":        "Shopify",
	".statuspage.io":        "Statuspage",
	".surge.sh":             "Surge.sh",
	".tumblr.com":           "Tumblr",
	".uservoice.com":        "UserVoice",
	".webflow.io":           "Webflow",
	".wordpress.com":        "Wordpress",
	".wpengine.com":         "WP Engine",
	".zendesk.com":          "Zendesk",
	".unbouncepages.com":    "Unbounce",
	".kinsta.cloud":         "Kinsta",
}

// Subdomains discovers subdomains by probing a wordlist of common labels
// and checks discovered hosts for dangling-CNAME takeover exposure.
type Subdomains struct {
	// MaxSubdomains caps the number of wordlist candidates checked
	MaxSubdomains int
	// Resolver performs the DNS lookups
	Resolver *net.Resolver
}

// NewSubdomains creates a Subdomains probe with default settings.
func NewSubdomains() *Subdomains {
	return &Subdomains{
		MaxSubdomains: defaultMaxSubdomains,
		Resolver:      net.DefaultResolver,
	}
}

// Scan implements the Probe contract.
func (p *Subdomains) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	limit := min(p.MaxSubdomains, len(commonSubdomains))

	discovered := make([]string, 0, limit)
	interesting := make([]string, 0)

	for _, label := range commonSubdomains[:limit] {
		if ctx.Err() != nil {
			break
		}

		fullDomain := fmt.Sprintf("%s.%s", label, target)

		if !p.resolves(ctx, fullDomain) {
			continue
		}

		discovered = append(discovered, fullDomain)

		if desc, ok := subdomainContext(label); ok {
			interesting = append(interesting, fullDomain)

			data.Findings = append(data.Findings, types.Finding{
				Severity:    types.SeverityInfo,
				Title:       "Interesting subdomain discovered",
				Description: fmt.Sprintf("%s (%s)", fullDomain, desc),
			})
		}
	}

	data.Metadata["total_subdomains"] = len(discovered)
	data.Metadata["subdomains"] = discovered
	data.Metadata["interesting_subdomains"] = interesting

	if len(discovered) > 0 {
		data.Findings = append(data.Findings, types.Finding{
			Severity:    types.SeverityInfo,
			Title:       "Subdomain enumeration summary",
			Description: fmt.Sprintf("Discovered %d subdomains, %d of interest", len(discovered), len(interesting)),
		})
	}

	p.checkTakeovers(ctx, discovered, data)

	return data, nil
}

// resolves reports whether the host has at least one address record.
func (p *Subdomains) resolves(ctx context.Context, host string) bool {
	lookupCtx, cancel := context.WithTimeout(ctx, subdomainLookupTimeout)
	defer cancel()

	addrs, err := p.Resolver.LookupHost(lookupCtx, host)

	return err == nil && len(addrs) > 0
}

// subdomainContext returns why a label is considered sensitive.
func subdomainContext(label string) (string, bool) {
	if desc, ok := interestingSubdomainContexts[label]; ok {
		return desc, true
	}

	match, found := lo.FindKeyBy(interestingSubdomainContexts, func(pattern, _ string) bool {
		return strings.Contains(label, pattern)
	})
	if found {
		return interestingSubdomainContexts[match], true
	}

	return "", false
}

// checkTakeovers looks for discovered subdomains whose CNAME points at an
// external hosting service that no longer resolves.
func (p *Subdomains) checkTakeovers(ctx context.Context, subdomains []string, data *types.ProbeData) {
	limit := min(takeoverCheckLimit, len(subdomains))

	for _, subdomain := range subdomains[:limit] {
		if ctx.Err() != nil {
			break
		}

		lookupCtx, cancel := context.WithTimeout(ctx, subdomainLookupTimeout)
		cname, err := p.Resolver.LookupCNAME(lookupCtx, subdomain)

		cancel()

		if err != nil || cname == "" || cname == subdomain+"." {
			continue
		}

		cnameClean := strings.TrimSuffix(cname, ".")

		service, vulnerable := matchTakeoverService(cnameClean)
		if !vulnerable {
			continue
		}

		if p.resolves(ctx, cnameClean) {
			continue
		}

		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityHigh,
			Title:          "Potential subdomain takeover",
			Description:    fmt.Sprintf("%s has a CNAME to %s (%s) which appears to be unclaimed", subdomain, cnameClean, service),
			Recommendation: "Remove the dangling DNS record or reclaim the external resource",
		})
	}
}

// matchTakeoverService returns the hosting service a CNAME target belongs
// to, if it matches a known takeover-prone suffix.
func matchTakeoverService(cname string) (string, bool) {
	lower := strings.ToLower(cname)

	for pattern, service := range takeoverCNAMEPatterns {
		if strings.HasSuffix(lower, pattern) || strings.Contains(lower, pattern+".") {
			return service, true
		}
	}

	return "", false
}
