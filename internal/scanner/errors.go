package scanner

import "errors"

var (
	// ErrInvalidTarget is returned when the scan target is empty
	ErrInvalidTarget = errors.New("invalid scan target")
	// ErrUnknownProbe is returned when a probe filter names a probe that
	// does not exist in the registry
	ErrUnknownProbe = errors.New("unknown probe")
)
