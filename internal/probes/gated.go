package probes

import (
	"context"
	"fmt"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// Gated is a probe backed by a third-party API that requires a credential.
// The credential check is a guard clause: when the credential is absent
// the probe returns before any network I/O so the runner can mark it
// skipped rather than failed.
type Gated struct {
	// Service is the credential service name consulted via the lookup
	Service string
	// Title names the intelligence source in findings
	Title string
	// Description explains what the source would contribute
	Description string
}

// NewReputation creates the VirusTotal-backed reputation probe.
func NewReputation() *Gated {
	return &Gated{
		Service:     "virustotal",
		Title:       "VirusTotal reputation",
		Description: "Domain and IP reputation from VirusTotal's scanning network",
	}
}

// NewWebIntelligence creates the NewsAPI-backed web intelligence probe.
func NewWebIntelligence() *Gated {
	return &Gated{
		Service:     "newsapi",
		Title:       "News coverage",
		Description: "Recent news mentions of the organization via NewsAPI",
	}
}

// NewSocialMedia creates the Twitter-backed social media probe.
func NewSocialMedia() *Gated {
	return &Gated{
		Service:     "twitter",
		Title:       "Social media presence",
		Description: "Official accounts and mentions on Twitter/X",
	}
}

// NewBreaches creates the Have I Been Pwned breach exposure probe.
func NewBreaches() *Gated {
	return &Gated{
		Service:     "hibp",
		Title:       "Breach exposure",
		Description: "Known credential breaches affecting the domain via Have I Been Pwned",
	}
}

// NewGitHub creates the GitHub exposure probe.
func NewGitHub() *Gated {
	return &Gated{
		Service:     "github",
		Title:       "GitHub exposure",
		Description: "Public repositories, organization members, and leaked secrets on GitHub",
	}
}

// NewShodan creates the Shodan infrastructure probe.
func NewShodan() *Gated {
	return &Gated{
		Service:     "shodan",
		Title:       "Shodan infrastructure",
		Description: "Internet-wide scan data for the target's hosts via Shodan",
	}
}

// Scan implements the Probe contract.
func (p *Gated) Scan(_ context.Context, target string, lookup creds.Lookup) (*types.ProbeData, error) {
	if _, err := creds.Require(lookup, p.Service); err != nil {
		return nil, err
	}

	data := newProbeData()

	data.Metadata["service"] = p.Service
	data.Metadata["target"] = target

	data.Findings = append(data.Findings, types.Finding{
		Severity:    types.SeverityInfo,
		Title:       fmt.Sprintf("%s integration configured", p.Title),
		Description: p.Description,
	})

	return data, nil
}
