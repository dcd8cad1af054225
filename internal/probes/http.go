package probes

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

const (
	// defaultHTTPTimeout bounds each HTTP request made by web probes
	defaultHTTPTimeout = 10 * time.Second
	// maxRedirects caps redirect chains
	maxRedirects = 10
	// maxBodyBytes caps how much of a response body is read
	maxBodyBytes = 100 * 1024
	// maxRobotsPaths caps the disallowed paths reported from robots.txt
	maxRobotsPaths = 20
)

// exposedFiles lists paths that disclose sensitive data when reachable.
var exposedFiles = map[string]string{
	"/.env":                     "Environment configuration file",
	"/.git/config":              "Git configuration file",
	"/.well-known/security.txt": "Security policy file",
	"/wp-config.php":            "WordPress configuration",
	"/config.php":               "PHP configuration file",
	"/phpmyadmin":               "phpMyAdmin interface",
	"/admin":                    "Admin interface",
	"/backup":                   "Backup directory",
}

// bodyErrorPatterns maps response body substrings to information
// disclosure findings.
var bodyErrorPatterns = map[string]string{
	"stack trace":    "Stack trace exposed",
	"database error": "Database error exposed",
	"php warning":    "PHP warning exposed",
	"php error":      "PHP error exposed",
	"sql syntax":     "SQL error exposed",
	"apache/":        "Apache version disclosed",
	"nginx/":         "Nginx version disclosed",
}

// sensitiveRobotsHints flags robots.txt disallow paths that point at
// administrative or backup surfaces.
var sensitiveRobotsHints = []string{"admin", "backup", "config", "private", "internal", "secret"}

// HTTP inspects the target's web surface: reachable scheme, redirect
// behavior, server identification headers, robots.txt, sitemap, and
// commonly exposed files.
type HTTP struct {
	// Timeout bounds each request
	Timeout time.Duration
	// Client overrides the default HTTP client, used by tests
	Client *http.Client
}

// NewHTTP creates an HTTP probe with default settings.
func NewHTTP() *HTTP {
	return &HTTP{Timeout: defaultHTTPTimeout}
}

// Scan implements the Probe contract. The probe tries HTTPS first and
// falls back to plain HTTP; a target reachable over neither is a probe
// error.
func (p *HTTP) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()
	client := p.httpClient()

	resp, baseURL, err := p.fetchRoot(ctx, client, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHTTPService, err)
	}

	defer func() { _ = resp.Body.Close() }()

	data.Metadata["final_url"] = resp.Request.URL.String()
	data.Metadata["status_code"] = resp.StatusCode
	data.Metadata["protocol"] = resp.Request.URL.Scheme

	analyzeServerHeaders(resp.Header, data)

	if resp.Request.URL.Scheme == "http" {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityHigh,
			Title:          "Site not served over HTTPS",
			Description:    "The site is only reachable over unencrypted HTTP",
			Recommendation: "Serve all traffic over HTTPS and redirect HTTP requests",
		})
	} else {
		p.checkHTTPRedirect(ctx, target, data)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err == nil {
		analyzeResponseBody(string(body), data)
	}

	p.checkRobotsTxt(ctx, client, baseURL, data)
	p.checkSitemap(ctx, client, baseURL, data)
	p.checkExposedFiles(ctx, client, baseURL, data)

	return data, nil
}

// httpClient returns the configured client or builds the default one.
func (p *HTTP) httpClient() *http.Client {
	if p.Client != nil {
		return p.Client
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
		},
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}

			return nil
		},
	}
}

// fetchRoot requests the site root over HTTPS, then HTTP, and returns the
// first response along with the base URL of the working scheme.
func (p *HTTP) fetchRoot(ctx context.Context, client *http.Client, target string) (*http.Response, string, error) {
	var lastErr error

	for _, scheme := range []string{"https", "http"} {
		baseURL := fmt.Sprintf("%s://%s", scheme, target)

		resp, err := p.get(ctx, client, baseURL)
		if err == nil {
			return resp, baseURL, nil
		}

		lastErr = err
	}

	return nil, "", lastErr
}

// get issues a GET request with the probe user agent.
func (p *HTTP) get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", defaultUserAgent)

	return client.Do(req)
}

// analyzeServerHeaders flags identification headers that disclose the
// server stack.
func analyzeServerHeaders(headers http.Header, data *types.ProbeData) {
	if server := headers.Get("Server"); server != "" {
		data.Metadata["server"] = server

		if strings.Contains(server, "/") {
			data.Findings = append(data.Findings, types.Finding{
				Severity:       types.SeverityLow,
				Title:          "Server version disclosed",
				Description:    fmt.Sprintf("Server header reveals version: %s", server),
				Recommendation: "Remove version information from the Server header",
			})
		}
	}

	if powered := headers.Get("X-Powered-By"); powered != "" {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityLow,
			Title:          "Technology stack disclosed",
			Description:    fmt.Sprintf("X-Powered-By header reveals: %s", powered),
			Recommendation: "Remove the X-Powered-By header",
		})
	}
}

// checkHTTPRedirect verifies that plain HTTP requests are redirected to
// HTTPS.
func (p *HTTP) checkHTTPRedirect(ctx context.Context, target string, data *types.ProbeData) {
	noRedirect := &http.Client{
		Timeout: p.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := p.get(ctx, noRedirect, fmt.Sprintf("http://%s", target))
	if err != nil {
		return
	}

	defer func() { _ = resp.Body.Close() }()

	location := resp.Header.Get("Location")

	if resp.StatusCode < 300 || resp.StatusCode >= 400 || !strings.HasPrefix(location, "https://") {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityMedium,
			Title:          "HTTP not redirected to HTTPS",
			Description:    "Plain HTTP requests are served without a redirect to HTTPS",
			Recommendation: "Redirect all HTTP traffic to HTTPS with a 301 response",
		})
	}
}

// analyzeResponseBody flags error pages and stack traces that leak
// implementation detail.
func analyzeResponseBody(body string, data *types.ProbeData) {
	bodyLower := strings.ToLower(body)

	for pattern, title := range bodyErrorPatterns {
		if strings.Contains(bodyLower, pattern) {
			data.Findings = append(data.Findings, types.Finding{
				Severity:       types.SeverityMedium,
				Title:          title,
				Description:    "Found in response body",
				Recommendation: "Disable verbose error output in production",
			})
		}
	}
}

// checkRobotsTxt fetches robots.txt and reports disallowed paths that
// hint at sensitive surfaces.
func (p *HTTP) checkRobotsTxt(ctx context.Context, client *http.Client, baseURL string, data *types.ProbeData) {
	resp, err := p.get(ctx, client, baseURL+"/robots.txt")
	if err != nil {
		return
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return
	}

	var disallowed []string

	scanner := bufio.NewScanner(io.LimitReader(resp.Body, maxBodyBytes))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		path, ok := strings.CutPrefix(line, "Disallow:")
		if !ok {
			continue
		}

		path = strings.TrimSpace(path)
		if path == "" || path == "/" {
			continue
		}

		disallowed = append(disallowed, path)
		if len(disallowed) >= maxRobotsPaths {
			break
		}
	}

	if len(disallowed) == 0 {
		return
	}

	data.Metadata["robots_disallowed"] = disallowed

	sensitive := make([]string, 0)

	for _, path := range disallowed {
		pathLower := strings.ToLower(path)

		for _, hint := range sensitiveRobotsHints {
			if strings.Contains(pathLower, hint) {
				sensitive = append(sensitive, path)
				break
			}
		}
	}

	if len(sensitive) > 0 {
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityLow,
			Title:          "Sensitive paths listed in robots.txt",
			Description:    fmt.Sprintf("robots.txt discloses %d potentially sensitive paths", len(sensitive)),
			Data:           sensitive,
			Recommendation: "robots.txt is public; do not rely on it to hide sensitive paths",
		})
	}
}

// checkSitemap records whether a sitemap is published.
func (p *HTTP) checkSitemap(ctx context.Context, client *http.Client, baseURL string, data *types.ProbeData) {
	resp, err := p.get(ctx, client, baseURL+"/sitemap.xml")
	if err != nil {
		return
	}

	_ = resp.Body.Close()

	data.Metadata["sitemap"] = resp.StatusCode == http.StatusOK
}

// checkExposedFiles probes commonly exposed sensitive paths.
func (p *HTTP) checkExposedFiles(ctx context.Context, client *http.Client, baseURL string, data *types.ProbeData) {
	for path, description := range exposedFiles {
		if ctx.Err() != nil {
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL+path, nil)
		if err != nil {
			continue
		}

		req.Header.Set("User-Agent", defaultUserAgent)

		resp, err := client.Do(req)
		if err != nil {
			continue
		}

		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			continue
		}

		severity := types.SeverityInfo
		if strings.Contains(path, ".env") || strings.Contains(path, ".git") || strings.Contains(path, "config") {
			severity = types.SeverityHigh
		}

		data.Findings = append(data.Findings, types.Finding{
			Severity:       severity,
			Title:          fmt.Sprintf("Exposed %s", description),
			Description:    fmt.Sprintf("Accessible at %s%s", baseURL, path),
			Recommendation: "Restrict access to this path or remove it from the web root",
		})
	}
}
