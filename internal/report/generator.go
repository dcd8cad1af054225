package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Report formats accepted by WriteAll.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
	FormatAll      = "all"
)

// outputDirPerm is the permission for created report directories
const outputDirPerm = 0o750

// WriteAll renders the report into dir in the requested format, or every
// format when FormatAll is given. It returns the paths written.
func WriteAll(dir, format string, report *Report) ([]string, error) {
	if err := os.MkdirAll(dir, outputDirPerm); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	formats := []string{format}
	if format == FormatAll {
		formats = []string{FormatJSON, FormatMarkdown, FormatHTML, FormatPDF}
	}

	written := make([]string, 0, len(formats))

	for _, f := range formats {
		path, err := writeOne(dir, f, report)
		if err != nil {
			return written, err
		}

		written = append(written, path)
	}

	return written, nil
}

// writeOne renders a single format into dir.
func writeOne(dir, format string, report *Report) (string, error) {
	switch format {
	case FormatJSON:
		return renderToFile(filepath.Join(dir, "report.json"), report, RenderJSON)
	case FormatMarkdown:
		return renderToFile(filepath.Join(dir, "report.md"), report, RenderMarkdown)
	case FormatHTML:
		return renderToFile(filepath.Join(dir, "report.html"), report, RenderHTML)
	case FormatPDF:
		path := filepath.Join(dir, "report.pdf")
		if err := RenderPDF(path, report); err != nil {
			return "", err
		}

		return path, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// renderToFile runs a writer-based renderer against a new file.
func renderToFile(path string, report *Report, render func(w io.Writer, r *Report) error) (string, error) {
	file, err := os.Create(path) //nolint:gosec // path is built from the configured output directory
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}

	defer func() { _ = file.Close() }()

	if err := render(file, report); err != nil {
		return "", err
	}

	return path, nil
}
