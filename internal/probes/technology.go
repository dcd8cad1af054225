package probes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	wappalyzer "github.com/projectdiscovery/wappalyzergo"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// TechnologyDetail holds enriched information about a detected technology.
type TechnologyDetail struct {
	// Name is the technology name as identified by wappalyzer
	Name string `json:"name"`
	// Categories lists the wappalyzer categories for this technology
	Categories []string `json:"categories,omitempty"`
	// Website is the official website URL for the technology
	Website string `json:"website,omitempty"`
	// Description is a brief description of the technology
	Description string `json:"description,omitempty"`
}

// excludedTechnologyNames lists protocol features and web standards that
// are not vendor or SaaS technologies and should be excluded from results.
var excludedTechnologyNames = map[string]struct{}{
	"HTTP/2":            {},
	"HTTP/3":            {},
	"QUIC":              {},
	"HSTS":              {},
	"Open Graph":        {},
	"Twitter Cards":     {},
	"Schema.org":        {},
	"JSON-LD":           {},
	"Meta Tags":         {},
	"WebP":              {},
	"Webpack":           {},
	"Vite":              {},
	"Module Federation": {},
}

// Technology fingerprints the software stack serving the target from HTTP
// response headers and body content.
type Technology struct {
	// Timeout bounds the fingerprinting request
	Timeout time.Duration
	// Client overrides the default HTTP client, used by tests
	Client *http.Client
}

// NewTechnology creates a Technology probe with default settings.
func NewTechnology() *Technology {
	return &Technology{Timeout: defaultHTTPTimeout}
}

// Scan implements the Probe contract.
func (p *Technology) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	client := p.Client
	if client == nil {
		client = &http.Client{
			Timeout: p.Timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return ErrTooManyRedirects
				}

				return nil
			},
		}
	}

	resp, err := p.fetch(ctx, client, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHTTPService, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if err := fingerprintTechnologies(resp.Header, body, data); err != nil {
		return nil, err
	}

	return data, nil
}

// fetch requests the site root over HTTPS, then HTTP.
func (p *Technology) fetch(ctx context.Context, client *http.Client, target string) (*http.Response, error) {
	var lastErr error

	for _, scheme := range []string{"https", "http"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s://%s", scheme, target), nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("User-Agent", defaultUserAgent)

		resp, err := client.Do(req)
		if err == nil {
			return resp, nil
		}

		lastErr = err
	}

	return nil, lastErr
}

// fingerprintTechnologies runs wappalyzer against the response and
// records vendor technologies, filtering out protocol features.
func fingerprintTechnologies(headers http.Header, body []byte, data *types.ProbeData) error {
	client, err := wappalyzer.New()
	if err != nil {
		return fmt.Errorf("wappalyzer init: %w", err)
	}

	fingerprints := client.FingerprintWithInfo(headers, body)
	technologies := make([]TechnologyDetail, 0, len(fingerprints))

	for tech, info := range fingerprints {
		if _, excluded := excludedTechnologyNames[tech]; excluded {
			continue
		}

		technologies = append(technologies, TechnologyDetail{
			Name:        tech,
			Categories:  info.Categories,
			Website:     info.Website,
			Description: info.Description,
		})
	}

	sort.Slice(technologies, func(i, j int) bool {
		return technologies[i].Name < technologies[j].Name
	})

	for _, tech := range technologies {
		data.Findings = append(data.Findings, types.Finding{
			Severity:    types.SeverityInfo,
			Title:       fmt.Sprintf("Technology: %s", tech.Name),
			Description: tech.Description,
		})
	}

	data.Metadata["detected_technologies"] = technologies
	data.Metadata["technology_count"] = len(technologies)

	return nil
}
