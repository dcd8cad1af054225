package probes

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

const (
	// defaultDNSServer is the resolver used when none is configured
	defaultDNSServer = "8.8.8.8:53"
	// defaultDNSTimeout is the per-query timeout for DNS lookups
	defaultDNSTimeout = 5 * time.Second
	// zoneTransferTimeout bounds each AXFR attempt
	zoneTransferTimeout = 10 * time.Second
	// maxZoneTransferNS limits how many nameservers are tested for AXFR
	maxZoneTransferNS = 3
)

// queriedRecordTypes lists the record types enumerated by the DNS probe,
// in query order.
var queriedRecordTypes = []struct {
	name  string
	qtype uint16
}{
	{"A", dns.TypeA},
	{"AAAA", dns.TypeAAAA},
	{"MX", dns.TypeMX},
	{"NS", dns.TypeNS},
	{"TXT", dns.TypeTXT},
	{"SOA", dns.TypeSOA},
	{"CNAME", dns.TypeCNAME},
	{"CAA", dns.TypeCAA},
}

// DNS enumerates DNS records for the target and analyzes them for
// security-relevant configuration: SPF policy strength, CAA coverage,
// zone transfer exposure, and DNSSEC.
type DNS struct {
	// Server is the DNS resolver in host:port form
	Server string
	// Timeout is the per-query timeout
	Timeout time.Duration
}

// NewDNS creates a DNS probe with default resolver settings.
func NewDNS() *DNS {
	return &DNS{
		Server:  defaultDNSServer,
		Timeout: defaultDNSTimeout,
	}
}

// Scan implements the Probe contract.
func (p *DNS) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()
	client := &dns.Client{Timeout: p.Timeout}

	records := make(map[string][]string)

	var nameservers []string

	for _, rt := range queriedRecordTypes {
		if ctx.Err() != nil {
			break
		}

		values, rcode, err := p.query(ctx, client, target, rt.qtype)
		if err != nil {
			records[rt.name] = []string{}
			continue
		}

		if rcode == dns.RcodeNameError {
			data.Findings = append(data.Findings, types.Finding{
				Severity:       types.SeverityCritical,
				Title:          "Domain does not exist",
				Description:    fmt.Sprintf("The domain %s does not exist (NXDOMAIN)", target),
				Recommendation: "Verify the target domain name",
			})

			break
		}

		records[rt.name] = values

		switch rt.name {
		case "TXT":
			analyzeTXTRecords(values, data)
		case "MX":
			if len(values) == 0 {
				data.Findings = append(data.Findings, types.Finding{
					Severity:    types.SeverityLow,
					Title:       "No MX records",
					Description: "Domain has no MX records and may not accept email",
				})
			}
		case "NS":
			nameservers = values
		case "CAA":
			analyzeCAARecords(values, data)
		}
	}

	data.Metadata["records"] = records

	if len(nameservers) > 0 {
		data.Metadata["zone_transfer"] = p.checkZoneTransfer(ctx, target, nameservers, data)
	}

	data.Metadata["dnssec"] = p.checkDNSSEC(ctx, client, target, data)

	return data, nil
}

// query performs a single DNS query and returns the formatted record data.
func (p *DNS) query(ctx context.Context, client *dns.Client, target string, qtype uint16) ([]string, int, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(target), qtype)
	msg.RecursionDesired = true

	resp, _, err := client.ExchangeContext(ctx, msg, p.Server)
	if err != nil || resp == nil {
		return nil, dns.RcodeServerFailure, fmt.Errorf("dns query failed: %w", err)
	}

	values := make([]string, 0, len(resp.Answer))

	for _, rr := range resp.Answer {
		if rr.Header().Rrtype != qtype {
			continue
		}

		values = append(values, formatRecord(rr))
	}

	return values, resp.Rcode, nil
}

// formatRecord renders the rdata portion of a resource record.
func formatRecord(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.String()
	case *dns.AAAA:
		return v.AAAA.String()
	case *dns.MX:
		return fmt.Sprintf("%d %s", v.Preference, strings.TrimSuffix(v.Mx, "."))
	case *dns.NS:
		return strings.TrimSuffix(v.Ns, ".")
	case *dns.TXT:
		return strings.Join(v.Txt, "")
	case *dns.SOA:
		return fmt.Sprintf("%s %s %d", strings.TrimSuffix(v.Ns, "."), strings.TrimSuffix(v.Mbox, "."), v.Serial)
	case *dns.CNAME:
		return strings.TrimSuffix(v.Target, ".")
	case *dns.CAA:
		return fmt.Sprintf("%d %s %q", v.Flag, v.Tag, v.Value)
	default:
		return rr.String()
	}
}

// analyzeTXTRecords inspects TXT records for email security configuration.
func analyzeTXTRecords(records []string, data *types.ProbeData) {
	for _, record := range records {
		lower := strings.ToLower(record)

		if strings.HasPrefix(lower, "v=spf1") {
			if strings.Contains(lower, "~all") || strings.Contains(lower, "-all") {
				data.Findings = append(data.Findings, types.Finding{
					Severity:    types.SeverityInfo,
					Title:       "SPF record configured",
					Description: fmt.Sprintf("Domain has SPF configured: %s", record),
				})
			} else {
				data.Findings = append(data.Findings, types.Finding{
					Severity:       types.SeverityMedium,
					Title:          "Weak SPF policy",
					Description:    fmt.Sprintf("SPF record exists but may be too permissive: %s", record),
					Recommendation: "Consider using '-all' for stricter SPF policy",
				})
			}
		}

		if strings.HasPrefix(lower, "v=dmarc1") {
			data.Findings = append(data.Findings, types.Finding{
				Severity:    types.SeverityInfo,
				Title:       "DMARC record found",
				Description: fmt.Sprintf("Domain has DMARC configured: %s", record),
			})
		}
	}
}

// analyzeCAARecords reports on Certificate Authority Authorization coverage.
func analyzeCAARecords(records []string, data *types.ProbeData) {
	if len(records) > 0 {
		data.Findings = append(data.Findings, types.Finding{
			Severity:    types.SeverityInfo,
			Title:       "CAA records present",
			Description: "Domain has Certificate Authority Authorization records",
			Data:        records,
		})

		return
	}

	data.Findings = append(data.Findings, types.Finding{
		Severity:       types.SeverityLow,
		Title:          "No CAA records",
		Description:    "Domain lacks CAA records to restrict certificate issuance",
		Recommendation: "Consider adding CAA records to prevent unauthorized certificate issuance",
	})
}

// zoneTransferAttempt records the result of one AXFR attempt.
type zoneTransferAttempt struct {
	// Nameserver is the nameserver host that was tested
	Nameserver string `json:"nameserver"`
	// Status is vulnerable, protected, or timeout
	Status string `json:"status"`
}

// checkZoneTransfer attempts an AXFR against up to maxZoneTransferNS
// nameservers. A nameserver that serves the zone to an anonymous client
// exposes the complete DNS inventory of the domain.
func (p *DNS) checkZoneTransfer(ctx context.Context, target string, nameservers []string, data *types.ProbeData) []zoneTransferAttempt {
	attempts := make([]zoneTransferAttempt, 0, maxZoneTransferNS)

	for i, ns := range nameservers {
		if i >= maxZoneTransferNS || ctx.Err() != nil {
			break
		}

		nsHost := strings.TrimSuffix(strings.Trim(ns, `."`), ".")
		attempt := zoneTransferAttempt{Nameserver: nsHost, Status: "protected"}

		if p.attemptAXFR(target, nsHost) {
			attempt.Status = "vulnerable"

			data.Findings = append(data.Findings, types.Finding{
				Severity:       types.SeverityCritical,
				Title:          "DNS zone transfer allowed",
				Description:    fmt.Sprintf("Nameserver %s allows anonymous zone transfers (AXFR) for %s", nsHost, target),
				Recommendation: "Restrict zone transfers to authorized secondary nameservers",
			})
		}

		attempts = append(attempts, attempt)
	}

	return attempts
}

// attemptAXFR performs a single zone transfer attempt and reports whether
// any records were served.
func (p *DNS) attemptAXFR(target, nsHost string) bool {
	transfer := &dns.Transfer{
		DialTimeout:  p.Timeout,
		ReadTimeout:  zoneTransferTimeout,
		WriteTimeout: p.Timeout,
	}

	msg := new(dns.Msg)
	msg.SetAxfr(dns.Fqdn(target))

	envelopes, err := transfer.In(msg, net.JoinHostPort(nsHost, "53"))
	if err != nil {
		return false
	}

	for envelope := range envelopes {
		if envelope.Error != nil {
			return false
		}

		if len(envelope.RR) > 0 {
			return true
		}
	}

	return false
}

// dnssecStatus records whether DNSKEY records were found for the domain.
type dnssecStatus struct {
	// Enabled indicates whether DNSSEC signing keys were published
	Enabled bool `json:"enabled"`
	// Keys holds the discovered DNSKEY records
	Keys []string `json:"keys,omitempty"`
}

// checkDNSSEC queries for DNSKEY records to determine DNSSEC status.
func (p *DNS) checkDNSSEC(ctx context.Context, client *dns.Client, target string, data *types.ProbeData) dnssecStatus {
	keys, rcode, err := p.query(ctx, client, target, dns.TypeDNSKEY)
	if err != nil || rcode != dns.RcodeSuccess || len(keys) == 0 {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityLow,
			Title:          "DNSSEC not enabled",
			Description:    "No DNSKEY records found for the domain",
			Recommendation: "Consider enabling DNSSEC to protect against DNS spoofing",
		})

		return dnssecStatus{}
	}

	data.Findings = append(data.Findings, types.Finding{
		Severity:    types.SeverityInfo,
		Title:       "DNSSEC enabled",
		Description: fmt.Sprintf("Domain publishes %d DNSKEY record(s)", len(keys)),
	})

	return dnssecStatus{Enabled: true, Keys: keys}
}
