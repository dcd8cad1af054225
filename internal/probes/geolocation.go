package probes

import (
	"context"
	"fmt"
	"net"
	"time"

	rdaplib "github.com/openrdap/rdap"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// Geolocation determines where the target's infrastructure is registered
// by querying the RDAP registry for the resolved IP address.
type Geolocation struct {
	// Client performs the RDAP queries
	Client *rdaplib.Client
	// Timeout bounds the query
	Timeout time.Duration
	// Resolver resolves the target to an IP first
	Resolver *net.Resolver
}

// NewGeolocation creates a Geolocation probe with default settings.
func NewGeolocation() *Geolocation {
	return &Geolocation{
		Client:   &rdaplib.Client{},
		Timeout:  defaultRDAPTimeout,
		Resolver: net.DefaultResolver,
	}
}

// Scan implements the Probe contract.
func (p *Geolocation) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	addrs, err := p.Resolver.LookupHost(ctx, target)
	if err != nil || len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrHostResolution, target)
	}

	ip := addrs[0]
	data.Metadata["ip"] = ip

	network, err := rdapIPQuery(ctx, p.Client, p.Timeout, ip)
	if err != nil {
		return nil, fmt.Errorf("RDAP geolocation query for %s: %w", ip, err)
	}

	if network.Country != "" {
		data.Metadata["country"] = network.Country
	}

	if network.Name != "" {
		data.Metadata["network_name"] = network.Name
	}

	description := fmt.Sprintf("IP %s is registered in an unspecified region", ip)
	if network.Country != "" {
		description = fmt.Sprintf("IP %s is registered in %s", ip, network.Country)
	}

	data.Findings = append(data.Findings, types.Finding{
		Severity:    types.SeverityInfo,
		Title:       "Infrastructure location",
		Description: description,
	})

	return data, nil
}
