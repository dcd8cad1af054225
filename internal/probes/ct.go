package probes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/theopenlane/httpsling"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

const (
	// crtshBaseURL is the certificate transparency search endpoint
	crtshBaseURL = "https://crt.sh/"
	// ctRequestTimeout bounds the crt.sh query
	ctRequestTimeout = 30 * time.Second
	// maxCTNames caps the hostnames reported in metadata
	maxCTNames = 100
)

// ctEntry is one certificate row from the crt.sh JSON output.
type ctEntry struct {
	ID           int64  `json:"id"`
	IssuerName   string `json:"issuer_name"`
	CommonName   string `json:"common_name"`
	NameValue    string `json:"name_value"`
	NotBefore    string `json:"not_before"`
	NotAfter     string `json:"not_after"`
	SerialNumber string `json:"serial_number"`
}

// CertificateTransparency queries public CT logs for certificates issued
// to the target domain and surfaces the hostnames they disclose.
type CertificateTransparency struct {
	// BaseURL is the crt.sh endpoint, overridable for tests
	BaseURL string
	// Timeout bounds the query
	Timeout time.Duration
}

// NewCertificateTransparency creates a CT probe with default settings.
func NewCertificateTransparency() *CertificateTransparency {
	return &CertificateTransparency{
		BaseURL: crtshBaseURL,
		Timeout: ctRequestTimeout,
	}
}

// Scan implements the Probe contract.
func (p *CertificateTransparency) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	query := url.Values{}
	query.Set("q", "%."+target)
	query.Set("output", "json")

	requester := httpsling.MustNew(
		httpsling.URL(p.BaseURL+"?"+query.Encode()),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(&http.Client{Timeout: p.Timeout}),
	)

	var entries []ctEntry

	resp, err := requester.ReceiveWithContext(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("certificate transparency query: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: crt.sh returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	names, wildcards := collectCertificateNames(entries, target)

	data.Metadata["certificate_count"] = len(entries)
	data.Metadata["hostnames"] = names
	data.Metadata["hostname_count"] = len(names)

	data.Findings = append(data.Findings, types.Finding{
		Severity:    types.SeverityInfo,
		Title:       "Certificate transparency summary",
		Description: fmt.Sprintf("Found %d certificates disclosing %d distinct hostnames", len(entries), len(names)),
	})

	if len(wildcards) > 0 {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityLow,
			Title:          "Wildcard certificates issued",
			Description:    fmt.Sprintf("%d wildcard certificate names found in CT logs", len(wildcards)),
			Data:           wildcards,
			Recommendation: "Wildcard certificates widen the blast radius of a key compromise",
		})
	}

	if internal := filterInternalNames(names); len(internal) > 0 {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityMedium,
			Title:          "Internal hostnames disclosed in CT logs",
			Description:    fmt.Sprintf("%d hostnames suggest internal or non-production systems", len(internal)),
			Data:           internal,
			Recommendation: "Avoid issuing public certificates for internal hostnames; use a private CA",
		})
	}

	return data, nil
}

// collectCertificateNames deduplicates the hostnames disclosed across all
// certificate entries, separating wildcard names.
func collectCertificateNames(entries []ctEntry, target string) (names, wildcards []string) {
	seen := make(map[string]bool)

	for _, entry := range entries {
		for _, name := range strings.Split(entry.NameValue, "\n") {
			name = strings.ToLower(strings.TrimSpace(name))

			if name == "" || seen[name] || !strings.HasSuffix(name, target) {
				continue
			}

			seen[name] = true

			if strings.HasPrefix(name, "*.") {
				wildcards = append(wildcards, name)
				continue
			}

			if len(names) < maxCTNames {
				names = append(names, name)
			}
		}
	}

	sort.Strings(names)
	sort.Strings(wildcards)

	return names, wildcards
}

// filterInternalNames returns hostnames whose labels suggest internal or
// pre-production systems.
func filterInternalNames(names []string) []string {
	hints := []string{"internal", "staging", "dev.", "test.", "vpn.", "intranet", "corp."}

	var internal []string

	for _, name := range names {
		for _, hint := range hints {
			if strings.Contains(name, hint) {
				internal = append(internal, name)
				break
			}
		}
	}

	return internal
}
