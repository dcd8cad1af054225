package probes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
)

func TestGatedScan_MissingCredential(t *testing.T) {
	probes := []*Gated{
		NewReputation(),
		NewWebIntelligence(),
		NewSocialMedia(),
		NewBreaches(),
		NewGitHub(),
		NewShodan(),
	}

	empty := creds.FromMap(nil)

	for _, probe := range probes {
		_, err := probe.Scan(context.Background(), "example.com", empty)
		require.Error(t, err, probe.Service)
		assert.True(t, errors.Is(err, creds.ErrMissingCredential), probe.Service)
	}
}

func TestGatedScan_WithCredential(t *testing.T) {
	probe := NewShodan()
	lookup := creds.FromMap(map[string]string{"shodan": "api-key"})

	data, err := probe.Scan(context.Background(), "example.com", lookup)
	require.NoError(t, err)

	assert.Equal(t, "shodan", data.Metadata["service"])
	assert.True(t, hasFindingTitled(data.Findings, "Shodan infrastructure integration configured"))
}

func TestGatedScan_NilLookup(t *testing.T) {
	probe := NewGitHub()

	_, err := probe.Scan(context.Background(), "example.com", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, creds.ErrMissingCredential))
}
