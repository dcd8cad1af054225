package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mminutillo-nflx/vibe-probe/config"
	"github.com/mminutillo-nflx/vibe-probe/internal/api"
	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/scanner"
)

// serveCmd starts the scan API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the scan api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve initializes dependencies and starts the API server
func serve(ctx context.Context) error {
	cfgPath := k.String("config")

	cfg, err := config.Load(&cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg.Server.Debug = k.Bool("debug")
	cfg.Server.Pretty = k.Bool("pretty")

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

	handler := api.NewRouter(s, cfg.Server.ScanTimeout)
	handler = http.MaxBytesHandler(handler, cfg.Server.MaxBodySize)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("listen", cfg.Server.Listen).Msg("starting scan service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}
