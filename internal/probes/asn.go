package probes

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	rdaplib "github.com/openrdap/rdap"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// defaultRDAPTimeout bounds each RDAP registry query
const defaultRDAPTimeout = 30 * time.Second

// ASN identifies the network block and operating organization behind the
// target's IP address via the RDAP registry system.
type ASN struct {
	// Client performs the RDAP queries
	Client *rdaplib.Client
	// Timeout bounds the query
	Timeout time.Duration
	// Resolver resolves the target to an IP first
	Resolver *net.Resolver
}

// NewASN creates an ASN probe with default settings.
func NewASN() *ASN {
	return &ASN{
		Client:   &rdaplib.Client{},
		Timeout:  defaultRDAPTimeout,
		Resolver: net.DefaultResolver,
	}
}

// Scan implements the Probe contract.
func (p *ASN) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	addrs, err := p.Resolver.LookupHost(ctx, target)
	if err != nil || len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrHostResolution, target)
	}

	ip := addrs[0]

	network, err := rdapIPQuery(ctx, p.Client, p.Timeout, ip)
	if err != nil {
		return nil, fmt.Errorf("RDAP network query for %s: %w", ip, err)
	}

	info := map[string]any{
		"ip":      ip,
		"handle":  network.Handle,
		"name":    network.Name,
		"type":    network.Type,
		"country": network.Country,
	}

	if network.StartAddress != "" && network.EndAddress != "" {
		info["range"] = fmt.Sprintf("%s - %s", network.StartAddress, network.EndAddress)
	}

	if org := rdapOrganization(network.Entities); org != "" {
		info["organization"] = org
	}

	data.Metadata["network"] = info

	description := fmt.Sprintf("IP %s belongs to network %s", ip, network.Handle)
	if network.Name != "" {
		description = fmt.Sprintf("IP %s belongs to %s (%s)", ip, network.Name, network.Handle)
	}

	data.Findings = append(data.Findings, types.Finding{
		Severity:    types.SeverityInfo,
		Title:       "Network allocation",
		Description: description,
	})

	return data, nil
}

// rdapIPQuery performs an RDAP IP network lookup.
func rdapIPQuery(ctx context.Context, client *rdaplib.Client, timeout time.Duration, ip string) (*rdaplib.IPNetwork, error) {
	req := &rdaplib.Request{
		Type:    rdaplib.IPRequest,
		Query:   ip,
		Timeout: timeout,
	}

	req = req.WithContext(ctx)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	network, ok := resp.Object.(*rdaplib.IPNetwork)
	if !ok || network == nil {
		return nil, fmt.Errorf("%w: RDAP returned unexpected object type", ErrUnexpectedStatus)
	}

	return network, nil
}

// rdapOrganization extracts the registrant organization name from RDAP
// entities.
func rdapOrganization(entities []rdaplib.Entity) string {
	for _, entity := range entities {
		for _, role := range entity.Roles {
			if strings.EqualFold(role, "registrant") || strings.EqualFold(role, "administrative") {
				if entity.VCard != nil {
					if name := entity.VCard.Name(); name != "" {
						return name
					}
				}

				if entity.Handle != "" {
					return entity.Handle
				}
			}
		}
	}

	return ""
}
