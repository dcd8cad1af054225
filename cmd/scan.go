package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mminutillo-nflx/vibe-probe/config"
	"github.com/mminutillo-nflx/vibe-probe/internal/consent"
	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/domain"
	"github.com/mminutillo-nflx/vibe-probe/internal/report"
	"github.com/mminutillo-nflx/vibe-probe/internal/scanner"
	"github.com/mminutillo-nflx/vibe-probe/internal/slack"
)

// outDirTimestamp names the per-scan report directory
const outDirTimestamp = "20060102_150405"

// runScan drives a full CLI scan: consent, config, probes, reports, and the
// optional Slack notification.
func runScan(cmd *cobra.Command, target string) error {
	// the interactive scan always gets the console view
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	guard := &consent.Guard{}

	if !guard.Confirmed() {
		if k.Bool("yes") {
			if err := guard.Record(); err != nil {
				return err
			}
		} else if err := guard.Prompt(); err != nil {
			if errors.Is(err, consent.ErrDeclined) {
				log.Info().Msg("usage terms declined, exiting")
				return nil
			}

			return err
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	info, err := domain.Parse(target)
	if err != nil {
		return fmt.Errorf("parsing target: %w", err)
	}

	lookup := creds.Chain(creds.FromMap(cfg.Credentials), creds.FromEnv())

	s, err := scanner.New(
		scanner.WithProbeFilter(cfg.Probes),
		scanner.WithCredentialLookup(lookup),
		scanner.WithProbeTimeout(cfg.ProbeTimeout),
		scanner.WithPortScanTimeout(cfg.PortScanTimeout),
	)
	if err != nil {
		return fmt.Errorf("setting up scanner: %w", err)
	}

	result, err := s.ScanTarget(cmd.Context(), info.Domain)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", info.Domain, err)
	}

	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}

	rep := report.Aggregate(result, s.ProbeNames())

	outDir := filepath.Join(cfg.Output, info.Domain, time.Now().Format(outDirTimestamp))

	written, err := report.WriteAll(outDir, cfg.Format, rep)
	if err != nil {
		return fmt.Errorf("writing reports: %w", err)
	}

	for _, path := range written {
		log.Info().Str("path", path).Msg("report written")
	}

	fmt.Printf("Scan of %s complete: %d findings, risk level %s\n", rep.Target, rep.Summary.TotalFindings, rep.Summary.RiskLevel)
	fmt.Printf("Reports written to %s\n", outDir)

	notifySlack(cmd, cfg, rep)

	return nil
}

// loadConfig loads configuration with changed CLI flags applied on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath := k.String("config")

	overrides := map[string]any{}

	for _, name := range []string{"verbose", "output", "format", "probes"} {
		if cmd.Flags().Changed(name) {
			overrides[name] = k.Get(name)
		}
	}

	return config.Load(&cfgPath, overrides)
}

// notifySlack posts the scan summary when a webhook is configured. Failures
// are logged, not fatal, since the reports are already on disk.
func notifySlack(cmd *cobra.Command, cfg *config.Config, rep *report.Report) {
	if cfg.Slack.WebhookURL == "" {
		return
	}

	client, err := slack.New(
		cfg.Slack.WebhookURL,
		slack.WithHTTPClient(&http.Client{Timeout: cfg.Slack.RequestTimeout}),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize slack client")
		return
	}

	if err := client.Send(cmd.Context(), slack.BuildScanMessage(rep)); err != nil {
		log.Warn().Err(err).Msg("failed to send slack notification")
		return
	}

	log.Info().Msg("slack notification sent")
}
