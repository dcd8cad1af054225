// Package config loads tool configuration from defaults, a YAML file,
// environment variables, and CLI flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"
)

// envPrefix is the environment variable prefix for all settings
const envPrefix = "VIBEPROBE_"

// Config holds the full tool configuration
type Config struct {
	// Verbose enables debug-level logging
	Verbose bool `json:"verbose" koanf:"verbose" default:"false"`
	// Output is the directory reports are written under
	Output string `json:"output" koanf:"output" default:"./reports"`
	// Format selects the report format (json, markdown, html, pdf, all)
	Format string `json:"format" koanf:"format" default:"all"`
	// Probes restricts the scan to the named probes; empty runs all
	Probes []string `json:"probes" koanf:"probes"`
	// ProbeTimeout bounds each probe except the port scan
	ProbeTimeout time.Duration `json:"probe_timeout" koanf:"probe_timeout" default:"60s"`
	// PortScanTimeout bounds the port scan probe
	PortScanTimeout time.Duration `json:"port_scan_timeout" koanf:"port_scan_timeout" default:"120s"`
	// Credentials maps service names to API keys for gated probes
	Credentials map[string]string `json:"credentials" koanf:"credentials" sensitive:"true"`
	// Slack holds notification settings
	Slack Slack `json:"slack" koanf:"slack"`
	// Server holds serve-mode settings
	Server Server `json:"server" koanf:"server"`
}

// Slack holds webhook notification settings
type Slack struct {
	// WebhookURL is the Slack incoming webhook; empty disables notifications
	WebhookURL string `json:"webhook_url" koanf:"webhook_url" sensitive:"true"`
	// RequestTimeout bounds each webhook post
	RequestTimeout time.Duration `json:"request_timeout" koanf:"request_timeout" default:"10s"`
}

// Server holds API server settings
type Server struct {
	// Listen is the address the API server binds to
	Listen string `json:"listen" koanf:"listen" default:":8080"`
	// Debug enables debug-level logging in serve mode
	Debug bool `json:"debug" koanf:"debug" default:"false"`
	// Pretty enables human readable console logging in serve mode
	Pretty bool `json:"pretty" koanf:"pretty" default:"false"`
	// ReadTimeout is the HTTP server read timeout
	ReadTimeout time.Duration `json:"read_timeout" koanf:"read_timeout" default:"30s"`
	// WriteTimeout is the HTTP server write timeout
	WriteTimeout time.Duration `json:"write_timeout" koanf:"write_timeout" default:"600s"`
	// ShutdownGracePeriod bounds graceful shutdown on SIGTERM
	ShutdownGracePeriod time.Duration `json:"shutdown_grace_period" koanf:"shutdown_grace_period" default:"30s"`
	// ScanTimeout bounds a single scan request
	ScanTimeout time.Duration `json:"scan_timeout" koanf:"scan_timeout" default:"300s"`
	// MaxBodySize caps request body size in bytes
	MaxBodySize int64 `json:"max_body_size" koanf:"max_body_size" default:"102400"`
}

// envKeys maps environment variable suffixes whose koanf keys contain
// underscores and so cannot be derived by delimiter substitution.
var envKeys = map[string]string{
	"PROBE_TIMEOUT":                "probe_timeout",
	"PORT_SCAN_TIMEOUT":            "port_scan_timeout",
	"SLACK_WEBHOOK_URL":            "slack.webhook_url",
	"SLACK_REQUEST_TIMEOUT":        "slack.request_timeout",
	"SERVER_LISTEN":                "server.listen",
	"SERVER_READ_TIMEOUT":          "server.read_timeout",
	"SERVER_WRITE_TIMEOUT":         "server.write_timeout",
	"SERVER_SHUTDOWN_GRACE_PERIOD": "server.shutdown_grace_period",
	"SERVER_SCAN_TIMEOUT":          "server.scan_timeout",
	"SERVER_MAX_BODY_SIZE":         "server.max_body_size",
}

// Load builds the configuration. A nil or empty path skips the file layer,
// a named file that does not exist is skipped silently, and any explicit
// overrides (typically CLI flags) are applied last.
func Load(path *string, overrides ...map[string]any) (*Config, error) {
	cfg := &Config{}
	defaults.SetDefaults(cfg)

	k := koanf.New(".")

	if path != nil && *path != "" {
		if _, err := os.Stat(*path); err == nil {
			if err := k.Load(file.Provider(*path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", *path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	for _, override := range overrides {
		if err := k.Load(confmap.Provider(override, "."), nil); err != nil {
			return nil, fmt.Errorf("loading overrides: %w", err)
		}
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	return cfg, nil
}

// envKey translates an environment variable name into a koanf key.
func envKey(name string) string {
	name = strings.TrimPrefix(name, envPrefix)

	if key, ok := envKeys[name]; ok {
		return key
	}

	return strings.ReplaceAll(strings.ToLower(name), "_", ".")
}
