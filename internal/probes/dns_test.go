package probes

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// startDNSServer launches a local DNS server for probe tests
func startDNSServer(t *testing.T, handler dns.Handler) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &dns.Server{PacketConn: pc, Handler: handler}

	go func() { _ = server.ActivateAndServe() }()

	t.Cleanup(func() { _ = server.Shutdown() })

	return pc.LocalAddr().String()
}

// recordHandler answers queries from a static record set
type recordHandler struct {
	// records maps qtype to answer records
	records map[uint16][]dns.RR
	// nxdomain makes every response NXDOMAIN
	nxdomain bool
}

func (h *recordHandler) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	msg := new(dns.Msg)
	msg.SetReply(r)
	msg.Authoritative = true

	if h.nxdomain {
		msg.Rcode = dns.RcodeNameError
		_ = w.WriteMsg(msg)

		return
	}

	if len(r.Question) > 0 {
		msg.Answer = append(msg.Answer, h.records[r.Question[0].Qtype]...)
	}

	_ = w.WriteMsg(msg)
}

func txtRR(name string, values ...string) *dns.TXT {
	return &dns.TXT{
		Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: 300},
		Txt: values,
	}
}

func TestDNSScan_RecordEnumeration(t *testing.T) {
	handler := &recordHandler{
		records: map[uint16][]dns.RR{
			dns.TypeA: {&dns.A{
				Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 300},
				A:   net.ParseIP("192.0.2.10"),
			}},
			dns.TypeMX: {&dns.MX{
				Hdr:        dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeMX, Class: dns.ClassINET, Ttl: 300},
				Preference: 10,
				Mx:         "mail.example.com.",
			}},
			dns.TypeTXT: {txtRR("example.com.", "v=spf1 include:_spf.example.com -all")},
		},
	}

	probe := NewDNS()
	probe.Server = startDNSServer(t, handler)
	probe.Timeout = 2 * time.Second

	data, err := probe.Scan(context.Background(), "example.com", nil)
	require.NoError(t, err)
	require.NotNil(t, data)

	records, ok := data.Metadata["records"].(map[string][]string)
	require.True(t, ok)

	assert.Equal(t, []string{"192.0.2.10"}, records["A"])
	assert.Equal(t, []string{"10 mail.example.com"}, records["MX"])

	assert.True(t, hasFindingTitled(data.Findings, "SPF record configured"))
	assert.True(t, hasFindingTitled(data.Findings, "No CAA records"))
	assert.True(t, hasFindingTitled(data.Findings, "DNSSEC not enabled"))
}

func TestDNSScan_NXDomain(t *testing.T) {
	probe := NewDNS()
	probe.Server = startDNSServer(t, &recordHandler{nxdomain: true})
	probe.Timeout = 2 * time.Second

	data, err := probe.Scan(context.Background(), "does-not-exist.example", nil)
	require.NoError(t, err)

	require.NotEmpty(t, data.Findings)
	assert.Equal(t, types.SeverityCritical, data.Findings[0].Severity)
	assert.Equal(t, "Domain does not exist", data.Findings[0].Title)
}

func TestDNSScan_WeakSPF(t *testing.T) {
	handler := &recordHandler{
		records: map[uint16][]dns.RR{
			dns.TypeTXT: {txtRR("example.com.", "v=spf1 include:example.com +all")},
		},
	}

	probe := NewDNS()
	probe.Server = startDNSServer(t, handler)
	probe.Timeout = 2 * time.Second

	data, err := probe.Scan(context.Background(), "example.com", nil)
	require.NoError(t, err)

	assert.True(t, hasFindingTitled(data.Findings, "Weak SPF policy"))
}

func TestDNSScan_MissingMX(t *testing.T) {
	probe := NewDNS()
	probe.Server = startDNSServer(t, &recordHandler{records: map[uint16][]dns.RR{}})
	probe.Timeout = 2 * time.Second

	data, err := probe.Scan(context.Background(), "example.com", nil)
	require.NoError(t, err)

	assert.True(t, hasFindingTitled(data.Findings, "No MX records"))
}

func TestFormatRecord(t *testing.T) {
	cases := []struct {
		name string
		rr   dns.RR
		want string
	}{
		{
			name: "A record",
			rr: &dns.A{
				Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeA, Class: dns.ClassINET},
				A:   net.ParseIP("192.0.2.1"),
			},
			want: "192.0.2.1",
		},
		{
			name: "CNAME record",
			rr: &dns.CNAME{
				Hdr:    dns.RR_Header{Name: "www.example.com.", Rrtype: dns.TypeCNAME, Class: dns.ClassINET},
				Target: "example.com.",
			},
			want: "example.com",
		},
		{
			name: "CAA record",
			rr: &dns.CAA{
				Hdr:   dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeCAA, Class: dns.ClassINET},
				Flag:  0,
				Tag:   "issue",
				Value: "letsencrypt.org",
			},
			want: `0 issue "letsencrypt.org"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatRecord(tc.rr))
		})
	}
}

// hasFindingTitled reports whether a finding with the given title exists
func hasFindingTitled(findings []types.Finding, title string) bool {
	for _, finding := range findings {
		if finding.Title == title {
			return true
		}
	}

	return false
}
