package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// probeReply carries a probe's return values across the timeout race.
type probeReply struct {
	data *types.ProbeData
	err  error
}

// runProbe executes a single probe under its timeout ceiling and
// classifies the outcome. It never returns an error: every failure mode
// becomes a skipped or error outcome so one probe cannot abort a scan.
func (s *Scanner) runProbe(ctx context.Context, reg Registration, target string) types.ProbeOutcome {
	timeout := s.timeoutFor(reg.Name)

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()

	// Buffered so a probe finishing after the deadline can still send
	// its reply and exit instead of leaking.
	replyChan := make(chan probeReply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				replyChan <- probeReply{err: fmt.Errorf("probe panicked: %v", r)}
			}
		}()

		data, err := reg.Probe.Scan(probeCtx, target, s.options.Lookup)
		replyChan <- probeReply{data: data, err: err}
	}()

	select {
	case <-probeCtx.Done():
		log.Warn().
			Str("probe", reg.Name).
			Dur("elapsed", time.Since(started)).
			Msg("probe timed out")

		return types.ProbeOutcome{
			Priority: reg.Priority,
			Status:   types.StatusSkipped,
			Error:    fmt.Sprintf("probe timed out after %d seconds", int(timeout.Seconds())),
		}
	case reply := <-replyChan:
		return classifyReply(reg, reply, started)
	}
}

// timeoutFor returns the runtime ceiling for the named probe.
func (s *Scanner) timeoutFor(name string) time.Duration {
	if name == ProbePorts {
		return s.options.PortScanTimeout
	}

	return s.options.ProbeTimeout
}

// classifyReply converts a probe's return values into an outcome.
// Missing credentials are environmental, not failures, so they classify
// as skipped; everything else that errored is an error outcome.
func classifyReply(reg Registration, reply probeReply, started time.Time) types.ProbeOutcome {
	elapsed := time.Since(started)

	switch {
	case reply.err == nil:
		data := reply.data
		if data == nil {
			data = &types.ProbeData{
				Findings: []types.Finding{},
				Metadata: map[string]any{},
			}
		}

		stampProbe(reg.Name, data)

		log.Debug().
			Str("probe", reg.Name).
			Dur("elapsed", elapsed).
			Int("findings", len(data.Findings)).
			Msg("probe completed")

		return types.ProbeOutcome{
			Priority: reg.Priority,
			Status:   types.StatusSuccess,
			Data:     data,
		}
	case errors.Is(reply.err, creds.ErrMissingCredential):
		log.Debug().
			Str("probe", reg.Name).
			Msg("probe skipped: missing credential")

		return types.ProbeOutcome{
			Priority: reg.Priority,
			Status:   types.StatusSkipped,
			Error:    reply.err.Error(),
		}
	default:
		log.Warn().
			Str("probe", reg.Name).
			Dur("elapsed", elapsed).
			Err(reply.err).
			Msg("probe failed")

		return types.ProbeOutcome{
			Priority: reg.Priority,
			Status:   types.StatusError,
			Error:    reply.err.Error(),
		}
	}
}

// stampProbe fills the originating probe name on every finding so the
// aggregated report can attribute findings after merging.
func stampProbe(name string, data *types.ProbeData) {
	for i := range data.Findings {
		if data.Findings[i].Probe == "" {
			data.Findings[i].Probe = name
		}

		data.Findings[i].Severity = types.NormalizeSeverity(data.Findings[i].Severity)
	}
}
