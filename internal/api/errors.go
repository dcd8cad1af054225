package api

import "errors"

var (
	// ErrInvalidRequestBody is returned when the request body cannot be decoded
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrDomainOrEmailRequired is returned when neither domain nor email is provided
	ErrDomainOrEmailRequired = errors.New("domain or email required")
	// ErrMultipleJSONObjects is returned when the request body contains more than one JSON object
	ErrMultipleJSONObjects = errors.New("request body must contain a single JSON object")
)
