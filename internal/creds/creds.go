// Package creds provides the credential gate consulted by probes that
// depend on external services.
package creds

import (
	"fmt"
	"os"
)

// Lookup maps a named external service to an optional credential.
// Implementations must be pure and side-effect free.
type Lookup func(service string) (string, bool)

// envVars maps service names to the environment variables that hold
// their credentials.
var envVars = map[string]string{
	"shodan":         "SHODAN_API_KEY",
	"virustotal":     "VIRUSTOTAL_API_KEY",
	"github":         "GITHUB_TOKEN",
	"twitter":        "TWITTER_BEARER_TOKEN",
	"newsapi":        "NEWSAPI_KEY",
	"hibp":           "HIBP_API_KEY",
	"censys":         "CENSYS_API_ID",
	"securitytrails": "SECURITYTRAILS_API_KEY",
}

// EnvVar returns the environment variable name for a service, or empty
// when the service is unknown.
func EnvVar(service string) string {
	return envVars[service]
}

// FromEnv returns a Lookup backed by process environment variables.
func FromEnv() Lookup {
	return func(service string) (string, bool) {
		name, ok := envVars[service]
		if !ok {
			return "", false
		}

		value := os.Getenv(name)

		return value, value != ""
	}
}

// FromMap returns a Lookup backed by a static map. Empty values are
// treated as absent.
func FromMap(values map[string]string) Lookup {
	return func(service string) (string, bool) {
		value, ok := values[service]

		return value, ok && value != ""
	}
}

// Chain returns a Lookup that consults each lookup in order and returns
// the first configured credential.
func Chain(lookups ...Lookup) Lookup {
	return func(service string) (string, bool) {
		for _, lookup := range lookups {
			if lookup == nil {
				continue
			}

			if value, ok := lookup(service); ok {
				return value, true
			}
		}

		return "", false
	}
}

// Require returns the credential for a service or an error wrapping
// ErrMissingCredential. Probes call this as a guard clause before any
// network I/O.
func Require(lookup Lookup, service string) (string, error) {
	if lookup != nil {
		if value, ok := lookup(service); ok {
			return value, nil
		}
	}

	if name := EnvVar(service); name != "" {
		return "", fmt.Errorf("%w: %s API credential not configured (set %s)", ErrMissingCredential, service, name)
	}

	return "", fmt.Errorf("%w: %s API credential not configured", ErrMissingCredential, service)
}
