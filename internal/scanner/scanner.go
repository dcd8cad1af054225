// Package scanner orchestrates the probe fleet: it fans probes out
// concurrently against a target, enforces per-probe timeouts, isolates
// failures, and collects one outcome per probe into a scan result.
package scanner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// Scanner runs the registered probes against scan targets.
type Scanner struct {
	// options holds the configuration for scan behavior
	options *ScanOptions
}

// New creates a scanner with the given options. A probe filter naming an
// unregistered probe is rejected here rather than silently ignored.
func New(opts ...ScanOption) (*Scanner, error) {
	options := DefaultScanOptions()
	for _, opt := range opts {
		opt(options)
	}

	known := RegistryNames(options.Registry)

	for _, name := range options.ProbeFilter {
		if !lo.Contains(known, name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProbe, name)
		}
	}

	return &Scanner{options: options}, nil
}

// ProbeNames returns the names of the probes this scanner will run, in
// registry order.
func (s *Scanner) ProbeNames() []string {
	return RegistryNames(s.selected())
}

// ScanTarget runs every selected probe concurrently against the target
// and returns one outcome per probe. Individual probe failures never fail
// the scan.
func (s *Scanner) ScanTarget(ctx context.Context, target string) (*types.ScanResult, error) {
	target = strings.TrimSpace(strings.ToLower(target))
	if target == "" {
		return nil, ErrInvalidTarget
	}

	selected := s.selected()

	log.Info().
		Str("target", target).
		Int("probes", len(selected)).
		Msg("scan started")

	started := time.Now()

	result := &types.ScanResult{
		Target:   target,
		ScanTime: started.UTC().Format(time.RFC3339),
		Probes:   make(map[string]types.ProbeOutcome, len(selected)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, reg := range selected {
		wg.Add(1)

		go func(reg Registration) {
			defer wg.Done()

			outcome := s.runProbe(ctx, reg, target)

			mu.Lock()
			result.Probes[reg.Name] = outcome
			mu.Unlock()
		}(reg)
	}

	wg.Wait()

	log.Info().
		Str("target", target).
		Dur("elapsed", time.Since(started)).
		Msg("scan finished")

	return result, nil
}

// selected returns the registry entries matching the probe filter, in
// registry order. An empty filter selects everything.
func (s *Scanner) selected() []Registration {
	if len(s.options.ProbeFilter) == 0 {
		return s.options.Registry
	}

	return lo.Filter(s.options.Registry, func(reg Registration, _ int) bool {
		return lo.Contains(s.options.ProbeFilter, reg.Name)
	})
}
