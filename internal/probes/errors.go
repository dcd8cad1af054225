package probes

import "errors"

var (
	// ErrHostResolution is returned when the target cannot be resolved to an IP address
	ErrHostResolution = errors.New("could not resolve host")
	// ErrTooManyRedirects is returned when an HTTP request exceeds the redirect limit
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrNoHTTPService is returned when the target is reachable over neither HTTPS nor HTTP
	ErrNoHTTPService = errors.New("no HTTP service reachable")
	// ErrUnexpectedStatus is returned when an external API responds with an unexpected HTTP status
	ErrUnexpectedStatus = errors.New("unexpected response status")
)
