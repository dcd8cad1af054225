package probes

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// failingResolver always fails without touching the network
func failingResolver() *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(context.Context, string, string) (net.Conn, error) {
			return nil, errors.New("no resolver available")
		},
	}
}

func TestPortsScan_ResolutionFailure(t *testing.T) {
	probe := NewPorts()
	probe.Resolver = failingResolver()

	_, err := probe.Scan(context.Background(), "unresolvable.example", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHostResolution)
}

func TestAnalyzeOpenPort(t *testing.T) {
	cases := []struct {
		port         int
		wantTitle    string
		wantSeverity string
	}{
		{23, "Telnet port exposed", types.SeverityCritical},
		{3389, "RDP port exposed", types.SeverityCritical},
		{3306, "Database port exposed", types.SeverityCritical},
		{6379, "Database port exposed", types.SeverityCritical},
		{21, "FTP port exposed", types.SeverityHigh},
		{445, "SMB port exposed", types.SeverityHigh},
		{5900, "VNC port exposed", types.SeverityHigh},
	}

	for _, tc := range cases {
		data := newProbeData()
		analyzeOpenPort(tc.port, data)

		require.Len(t, data.Findings, 1, "port %d", tc.port)
		assert.Equal(t, tc.wantTitle, data.Findings[0].Title)
		assert.Equal(t, tc.wantSeverity, data.Findings[0].Severity)
	}
}

func TestAnalyzeOpenPort_BenignPorts(t *testing.T) {
	for _, port := range []int{22, 80, 443, 8080} {
		data := newProbeData()
		analyzeOpenPort(port, data)

		assert.Empty(t, data.Findings, "port %d should not produce a finding", port)
	}
}

func TestScannedPorts_CoverDatabasePorts(t *testing.T) {
	for port := range databasePorts {
		_, ok := scannedPorts[port]
		assert.True(t, ok, "database port %d must be in the scan set", port)
	}
}
