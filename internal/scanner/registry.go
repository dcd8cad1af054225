package scanner

import (
	"github.com/mminutillo-nflx/vibe-probe/internal/probes"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// Probe names as they appear in scan results and the --probes filter.
const (
	ProbeDNS                     = "dns"
	ProbeWhois                   = "whois"
	ProbeSSL                     = "ssl"
	ProbeSubdomains              = "subdomains"
	ProbePorts                   = "ports"
	ProbeHTTP                    = "http"
	ProbeTechnology              = "technology"
	ProbeEmails                  = "emails"
	ProbeSecurityHeaders         = "security_headers"
	ProbeCertificateTransparency = "certificate_transparency"
	ProbeCloudDetection          = "cloud_detection"
	ProbeReputation              = "reputation"
	ProbeWebIntelligence         = "web_intelligence"
	ProbeSocialMedia             = "social_media"
	ProbeBreaches                = "breaches"
	ProbeGitHub                  = "github"
	ProbeShodan                  = "shodan"
	ProbeWayback                 = "wayback"
	ProbeGeolocation             = "geolocation"
	ProbeASN                     = "asn"
)

// Registration binds a probe implementation to its name and priority.
type Registration struct {
	// Name identifies the probe in results and filters
	Name string
	// Priority classifies how important the probe's findings are
	Priority string
	// Probe is the implementation
	Probe probes.Probe
}

// DefaultRegistry returns the full probe set in canonical order. The
// order is preserved through scanning and reporting so results are
// stable across runs.
func DefaultRegistry() []Registration {
	return []Registration{
		{Name: ProbeDNS, Priority: types.PriorityCritical, Probe: probes.NewDNS()},
		{Name: ProbeWhois, Priority: types.PriorityHigh, Probe: probes.NewWhois()},
		{Name: ProbeSSL, Priority: types.PriorityHigh, Probe: probes.NewSSL()},
		{Name: ProbeSubdomains, Priority: types.PriorityHigh, Probe: probes.NewSubdomains()},
		{Name: ProbePorts, Priority: types.PriorityCritical, Probe: probes.NewPorts()},
		{Name: ProbeHTTP, Priority: types.PriorityHigh, Probe: probes.NewHTTP()},
		{Name: ProbeTechnology, Priority: types.PriorityMedium, Probe: probes.NewTechnology()},
		{Name: ProbeEmails, Priority: types.PriorityMedium, Probe: probes.NewEmails()},
		{Name: ProbeSecurityHeaders, Priority: types.PriorityHigh, Probe: probes.NewSecurityHeaders()},
		{Name: ProbeCertificateTransparency, Priority: types.PriorityMedium, Probe: probes.NewCertificateTransparency()},
		{Name: ProbeCloudDetection, Priority: types.PriorityMedium, Probe: probes.NewCloudDetection()},
		{Name: ProbeReputation, Priority: types.PriorityCritical, Probe: probes.NewReputation()},
		{Name: ProbeWebIntelligence, Priority: types.PriorityHigh, Probe: probes.NewWebIntelligence()},
		{Name: ProbeSocialMedia, Priority: types.PriorityMedium, Probe: probes.NewSocialMedia()},
		{Name: ProbeBreaches, Priority: types.PriorityCritical, Probe: probes.NewBreaches()},
		{Name: ProbeGitHub, Priority: types.PriorityHigh, Probe: probes.NewGitHub()},
		{Name: ProbeShodan, Priority: types.PriorityHigh, Probe: probes.NewShodan()},
		{Name: ProbeWayback, Priority: types.PriorityLow, Probe: probes.NewWayback()},
		{Name: ProbeGeolocation, Priority: types.PriorityLow, Probe: probes.NewGeolocation()},
		{Name: ProbeASN, Priority: types.PriorityMedium, Probe: probes.NewASN()},
	}
}

// RegistryNames returns the probe names of a registry in order.
func RegistryNames(registry []Registration) []string {
	names := make([]string, 0, len(registry))
	for _, reg := range registry {
		names = append(names, reg.Name)
	}

	return names
}
