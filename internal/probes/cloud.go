package probes

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/projectdiscovery/cdncheck"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// cloudLookupTimeout bounds the DNS lookups used for provider detection
const cloudLookupTimeout = 5 * time.Second

// CloudProvider holds a detected infrastructure provider (CDN, cloud, WAF).
type CloudProvider struct {
	// Provider is the infrastructure provider name (e.g. "cloudflare", "aws")
	Provider string `json:"provider"`
	// Category is the infrastructure type (e.g. "cdn", "cloud", "waf")
	Category string `json:"category"`
	// Details describes how the provider was detected
	Details string `json:"details"`
}

// CloudDetection identifies the CDN, cloud, and WAF providers fronting the
// target from its CNAME chain and IP address ranges.
type CloudDetection struct {
	// Resolver performs the DNS lookups
	Resolver *net.Resolver
}

// NewCloudDetection creates a CloudDetection probe with default settings.
func NewCloudDetection() *CloudDetection {
	return &CloudDetection{Resolver: net.DefaultResolver}
}

// Scan implements the Probe contract.
func (p *CloudDetection) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	client := cdncheck.New()
	seen := make(map[string]bool)

	var providers []CloudProvider

	lookupCtx, cancel := context.WithTimeout(ctx, cloudLookupTimeout)
	defer cancel()

	if cname, err := p.Resolver.LookupCNAME(lookupCtx, target); err == nil && cname != target+"." {
		cnameClean := strings.TrimSuffix(cname, ".")

		if matched, provider, itemType, checkErr := client.CheckSuffix(cnameClean); matched && checkErr == nil && provider != "" {
			key := fmt.Sprintf("%s:%s", provider, itemType)
			if !seen[key] {
				seen[key] = true

				providers = append(providers, CloudProvider{
					Provider: provider,
					Category: itemType,
					Details:  fmt.Sprintf("CNAME points to %s", cnameClean),
				})
			}
		}
	}

	if ips, err := p.Resolver.LookupIP(lookupCtx, "ip", target); err == nil {
		for _, ip := range ips {
			matched, provider, itemType, checkErr := client.Check(ip)
			if checkErr != nil || !matched || provider == "" {
				continue
			}

			key := fmt.Sprintf("%s:%s", provider, itemType)
			if seen[key] {
				continue
			}

			seen[key] = true

			providers = append(providers, CloudProvider{
				Provider: provider,
				Category: itemType,
				Details:  fmt.Sprintf("IP %s belongs to %s", ip.String(), provider),
			})
		}
	}

	for _, provider := range providers {
		data.Findings = append(data.Findings, types.Finding{
			Severity:    types.SeverityInfo,
			Title:       fmt.Sprintf("Infrastructure provider: %s", provider.Provider),
			Description: fmt.Sprintf("%s (%s)", provider.Details, provider.Category),
		})
	}

	if len(providers) == 0 {
		data.Findings = append(data.Findings, types.Finding{
			Severity:    types.SeverityInfo,
			Title:       "No cloud provider detected",
			Description: "The target does not appear to be fronted by a known CDN, cloud, or WAF provider",
		})
	}

	data.Metadata["providers"] = providers

	return data, nil
}
