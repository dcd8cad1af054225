package report

import "errors"

var (
	// ErrRenderFailed is returned when a report cannot be rendered
	ErrRenderFailed = errors.New("report rendering failed")
	// ErrUnsupportedFormat is returned for unknown report formats
	ErrUnsupportedFormat = errors.New("unsupported report format")
)
