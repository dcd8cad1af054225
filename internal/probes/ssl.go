package probes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/projectdiscovery/tlsx/pkg/tlsx"
	"github.com/projectdiscovery/tlsx/pkg/tlsx/clients"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

const (
	// defaultTLSTimeout is the TLS connection timeout in seconds
	defaultTLSTimeout = 10
	// tlsRetries is the number of retry attempts for TLS connections
	tlsRetries = 2
	// hoursPerDay converts hours to days for expiry math
	hoursPerDay = 24
	// certExpiryWarningDays is the expiring-soon threshold
	certExpiryWarningDays = 30
	// httpsPort is the port probed for TLS
	httpsPort = "443"
)

// SSL inspects the target's TLS endpoint: protocol version, cipher
// strength, and certificate validity.
type SSL struct {
	// TimeoutSeconds is the TLS connection timeout in seconds
	TimeoutSeconds int
}

// NewSSL creates an SSL probe with default settings.
func NewSSL() *SSL {
	return &SSL{TimeoutSeconds: defaultTLSTimeout}
}

// Scan implements the Probe contract. A target that does not serve TLS
// on 443 produces a medium finding rather than a probe failure.
func (p *SSL) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	timeout := p.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTLSTimeout
	}

	options := &clients.Options{
		Timeout:    timeout,
		Retries:    tlsRetries,
		Expired:    true,
		SelfSigned: true,
		MisMatched: true,
		Revoked:    true,
		MinVersion: "tls10",
		MaxVersion: "tls13",
	}

	service, err := tlsx.New(options)
	if err != nil {
		return nil, fmt.Errorf("tls analyzer init: %w", err)
	}

	response, err := service.Connect(target, "", httpsPort)
	if err != nil {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityMedium,
			Title:          "No TLS service on port 443",
			Description:    fmt.Sprintf("TLS connection failed: %v", err),
			Recommendation: "Serve the domain over HTTPS with a valid certificate",
		})

		return data, nil
	}

	if response == nil {
		return data, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tlsInfo := make(map[string]any)

	if response.Version != "" {
		tlsInfo["version"] = response.Version
		analyzeTLSVersion(response.Version, data)
	}

	if response.Cipher != "" {
		tlsInfo["cipher_suite"] = response.Cipher
		analyzeCipherSuite(response.Cipher, data)
	}

	tlsInfo["certificate"] = analyzeCertificate(target, response, data)

	if response.JarmHash != "" {
		tlsInfo["jarm_fingerprint"] = response.JarmHash
	}

	data.Metadata["tls"] = tlsInfo

	return data, nil
}

// analyzeTLSVersion flags deprecated protocol versions.
func analyzeTLSVersion(version string, data *types.ProbeData) {
	versionLower := strings.ToLower(version)

	switch {
	case strings.Contains(versionLower, "tls10") || strings.Contains(versionLower, "1.0"):
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityCritical,
			Title:          "Outdated TLS 1.0 in use",
			Description:    "TLS 1.0 is deprecated and has known vulnerabilities",
			Recommendation: "Disable TLS 1.0 and require TLS 1.2 or later",
		})
	case strings.Contains(versionLower, "tls11") || strings.Contains(versionLower, "1.1"):
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityHigh,
			Title:          "Outdated TLS 1.1 in use",
			Description:    "TLS 1.1 is deprecated and should be upgraded",
			Recommendation: "Disable TLS 1.1 and require TLS 1.2 or later",
		})
	}
}

// analyzeCipherSuite flags weak negotiated ciphers.
func analyzeCipherSuite(cipher string, data *types.ProbeData) {
	cipherLower := strings.ToLower(cipher)

	if strings.Contains(cipherLower, "rc4") || strings.Contains(cipherLower, "des") ||
		strings.Contains(cipherLower, "md5") || strings.Contains(cipherLower, "null") {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityCritical,
			Title:          "Weak cipher suite in use",
			Description:    fmt.Sprintf("Cipher: %s", cipher),
			Recommendation: "Disable weak cipher suites in the server configuration",
		})
	}
}

// analyzeCertificate derives certificate findings and returns the
// certificate metadata block.
func analyzeCertificate(target string, response *clients.Response, data *types.ProbeData) map[string]any {
	certInfo := make(map[string]any)

	if response.SubjectDN != "" {
		certInfo["subject"] = response.SubjectDN
	}

	if response.IssuerDN != "" {
		certInfo["issuer"] = response.IssuerDN
	}

	if !response.NotBefore.IsZero() {
		certInfo["not_before"] = response.NotBefore.Format(time.RFC3339)
	}

	if !response.NotAfter.IsZero() {
		certInfo["not_after"] = response.NotAfter.Format(time.RFC3339)
	}

	if len(response.SubjectAN) > 0 {
		certInfo["dns_names"] = response.SubjectAN
	}

	if response.Expired {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityCritical,
			Title:          "SSL certificate has expired",
			Description:    fmt.Sprintf("Certificate expired on %s", response.NotAfter.Format(time.RFC3339)),
			Recommendation: "Renew the certificate immediately",
		})
	}

	if !response.NotAfter.IsZero() && !response.Expired {
		daysUntilExpiry := int(time.Until(response.NotAfter).Hours() / hoursPerDay)
		if daysUntilExpiry > 0 && daysUntilExpiry < certExpiryWarningDays {
			data.Findings = append(data.Findings, types.Finding{
				Severity:       types.SeverityHigh,
				Title:          "SSL certificate expiring soon",
				Description:    fmt.Sprintf("Certificate expires in %d days", daysUntilExpiry),
				Recommendation: "Renew the certificate before it expires",
			})
		}
	}

	if response.SelfSigned {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityHigh,
			Title:          "Self-signed certificate detected",
			Description:    "Certificate is not issued by a trusted CA",
			Recommendation: "Use a certificate from a trusted certificate authority",
		})
	}

	if response.MisMatched {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityHigh,
			Title:          "Certificate does not match domain",
			Description:    fmt.Sprintf("Certificate subject does not cover %s", target),
			Recommendation: "Issue a certificate covering the served hostname",
		})
	}

	if response.Revoked {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityCritical,
			Title:          "Certificate has been revoked",
			Description:    "Certificate is listed in a revocation list",
			Recommendation: "Replace the revoked certificate",
		})
	}

	return certInfo
}
