package creds

import "errors"

var (
	// ErrMissingCredential is returned when a probe requires an external
	// credential that is not configured
	ErrMissingCredential = errors.New("missing credential")
)
