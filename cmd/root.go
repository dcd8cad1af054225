// Package cmd wires the CLI commands for the vibe-probe tool.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// appName is the name of the application used in CLI usage output
const appName = "vibe-probe"

// k is the global koanf instance used for configuration and flag management
var k *koanf.Koanf

// rootCmd runs a scan against the target given as the single argument
var rootCmd = &cobra.Command{
	Use:   appName + " <target>",
	Short: "passive reconnaissance scanner for domains, emails, and URLs",
	Long: `Runs a suite of reconnaissance probes against a target domain and
aggregates the findings into severity-ranked reports. The target may be a
domain, an email address, or a URL.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		err := initCmdFlags(cmd)
		cobra.CheckErr(err)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args[0])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down gracefully...")
	}()

	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

// init initializes the koanf instance and registers flags on the root command
func init() {
	k = koanf.New(".")
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Bool("pretty", false, "enable pretty (human readable) logging output")
	rootCmd.PersistentFlags().Bool("debug", false, "debug logging output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file location")

	rootCmd.Flags().BoolP("verbose", "v", false, "verbose scan logging")
	rootCmd.Flags().StringP("output", "o", "", "report output directory")
	rootCmd.Flags().StringP("format", "f", "", "report format (json, markdown, html, pdf, all)")
	rootCmd.Flags().StringSliceP("probes", "p", nil, "run only the named probes")
	rootCmd.Flags().Bool("yes", false, "accept the usage terms without prompting")
}

// initConfig loads flags and configures logging before commands run
func initConfig() {
	if err := initCmdFlags(rootCmd); err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	setupLogging()
}

// initCmdFlags loads the flags from the command line into the koanf instance
func initCmdFlags(cmd *cobra.Command) error {
	return k.Load(posflag.Provider(cmd.Flags(), k.Delim(), k), nil)
}

// setupLogging configures zerolog based on the debug and pretty flags
func setupLogging() {
	level := zerolog.InfoLevel

	if k.Bool("debug") || k.Bool("verbose") {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)

	if k.Bool("pretty") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
