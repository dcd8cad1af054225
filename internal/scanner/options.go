package scanner

import (
	"time"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
)

const (
	// defaultProbeTimeout is the runtime ceiling for most probes
	defaultProbeTimeout = 60 * time.Second
	// defaultPortScanTimeout is the runtime ceiling for the port scan,
	// which legitimately takes longer than other probes
	defaultPortScanTimeout = 120 * time.Second
)

// ScanOptions configures the scanner behavior
type ScanOptions struct {
	// ProbeFilter restricts the scan to the named probes; empty runs all
	ProbeFilter []string
	// Lookup resolves credentials for gated probes
	Lookup creds.Lookup
	// ProbeTimeout is the runtime ceiling for most probes
	ProbeTimeout time.Duration
	// PortScanTimeout is the runtime ceiling for the port scan probe
	PortScanTimeout time.Duration
	// Registry is the probe set to run
	Registry []Registration
}

// ScanOption is a functional option for configuring the scanner
type ScanOption func(*ScanOptions)

// DefaultScanOptions returns default scanner options
func DefaultScanOptions() *ScanOptions {
	return &ScanOptions{
		Lookup:          creds.FromEnv(),
		ProbeTimeout:    defaultProbeTimeout,
		PortScanTimeout: defaultPortScanTimeout,
		Registry:        DefaultRegistry(),
	}
}

// WithProbeFilter restricts the scan to the named probes
func WithProbeFilter(names []string) ScanOption {
	return func(o *ScanOptions) {
		o.ProbeFilter = names
	}
}

// WithCredentialLookup sets the credential source for gated probes
func WithCredentialLookup(lookup creds.Lookup) ScanOption {
	return func(o *ScanOptions) {
		if lookup != nil {
			o.Lookup = lookup
		}
	}
}

// WithProbeTimeout sets the runtime ceiling for most probes
func WithProbeTimeout(timeout time.Duration) ScanOption {
	return func(o *ScanOptions) {
		if timeout > 0 {
			o.ProbeTimeout = timeout
		}
	}
}

// WithPortScanTimeout sets the runtime ceiling for the port scan probe
func WithPortScanTimeout(timeout time.Duration) ScanOption {
	return func(o *ScanOptions) {
		if timeout > 0 {
			o.PortScanTimeout = timeout
		}
	}
}

// WithRegistry replaces the probe set, used by tests
func WithRegistry(registry []Registration) ScanOption {
	return func(o *ScanOptions) {
		if len(registry) > 0 {
			o.Registry = registry
		}
	}
}
