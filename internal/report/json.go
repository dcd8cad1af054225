package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	return nil
}
