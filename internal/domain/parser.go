// Package domain normalizes scan targets into registrable domain names.
package domain

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Info contains parsed target information
type Info struct {
	// Domain is the full normalized domain name used as the scan target
	Domain string `json:"domain"`
	// Subdomain is the subdomain portion, if present
	Subdomain string `json:"subdomain,omitempty"`
	// TLD is the effective top-level domain (public suffix)
	TLD string `json:"tld"`
	// SLD is the second-level domain
	SLD string `json:"sld"`
}

// Parse extracts domain information from a domain, email address, or URL.
// The target is used verbatim in DNS/HTTP/TLS calls after normalization.
func Parse(input string) (*Info, error) {
	// Extract domain from email if @ is present
	if strings.Contains(input, "@") {
		parts := strings.Split(input, "@")
		if len(parts) != 2 {
			return nil, ErrInvalidEmailFormat
		}

		input = parts[1]
	}

	input = strings.ToLower(strings.TrimSpace(input))

	// Strip scheme if a URL was given
	if strings.Contains(input, "://") {
		u, err := url.Parse(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidURLFormat, err)
		}

		input = u.Host
	}

	// Strip port if present
	if idx := strings.LastIndex(input, ":"); idx != -1 {
		input = input[:idx]
	}

	if input == "" || !strings.Contains(input, ".") {
		return nil, ErrInvalidDomainFormat
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDomainFormat, err)
	}

	tld, _ := publicsuffix.PublicSuffix(input)
	sld := strings.TrimSuffix(etld1, "."+tld)

	subdomain := ""
	if etld1 != input {
		subdomain = strings.TrimSuffix(input, "."+etld1)
	}

	return &Info{
		Domain:    input,
		Subdomain: subdomain,
		TLD:       tld,
		SLD:       sld,
	}, nil
}
