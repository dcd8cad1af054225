// Package probes implements the individual reconnaissance techniques run
// against a target domain. Each probe is an independent unit of work that
// performs its own network I/O with bounded deadlines and returns a
// structured payload of findings.
package probes

import (
	"context"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// Probe is the contract every reconnaissance technique implements.
//
// Scan performs the probe against the target and returns its payload.
// Probes that require an external credential must consult lookup as a
// guard clause and return an error wrapping creds.ErrMissingCredential
// before attempting any network I/O. All network calls inside Scan must
// carry their own deadlines sized well under the runner's timeout ceiling,
// and honor ctx cancellation.
type Probe interface {
	Scan(ctx context.Context, target string, lookup creds.Lookup) (*types.ProbeData, error)
}

// newProbeData creates a payload with normalized defaults.
func newProbeData() *types.ProbeData {
	return &types.ProbeData{
		Findings: make([]types.Finding, 0),
		Metadata: make(map[string]any),
	}
}

// defaultUserAgent identifies outbound HTTP requests made by probes.
const defaultUserAgent = "Mozilla/5.0 (compatible; VibeProbe/1.0)"
