package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

const (
	// pdfPageTopY is the y coordinate of the first line (origin lower left)
	pdfPageTopY = 800.0
	// pdfPageBottomY is where a page breaks
	pdfPageBottomY = 60.0
	// pdfLeftMargin is the x coordinate of body text
	pdfLeftMargin = 50.0
	// pdfLineHeight is the vertical distance between lines
	pdfLineHeight = 16.0
	// pdfBodyFontSize is the body text size
	pdfBodyFontSize = 10
	// pdfHeadingFontSize is the section heading size
	pdfHeadingFontSize = 14
	// pdfTitleFontSize is the document title size
	pdfTitleFontSize = 20
	// pdfMaxLineLength truncates overly long lines
	pdfMaxLineLength = 110
)

// pdfcpu create-JSON declaration types.
type pdfFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type pdfText struct {
	Value    string     `json:"value"`
	Position [2]float64 `json:"position"`
	Font     pdfFont    `json:"font"`
}

type pdfContent struct {
	Text []pdfText `json:"text"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfDocument struct {
	Pages map[string]pdfPage `json:"pages"`
}

// pdfBuilder lays text lines onto pages, breaking when a page fills up.
type pdfBuilder struct {
	doc  pdfDocument
	page int
	y    float64
}

func newPDFBuilder() *pdfBuilder {
	return &pdfBuilder{
		doc:  pdfDocument{Pages: make(map[string]pdfPage)},
		page: 1,
		y:    pdfPageTopY,
	}
}

func (b *pdfBuilder) line(value string, size int) {
	if b.y < pdfPageBottomY {
		b.page++
		b.y = pdfPageTopY
	}

	if len(value) > pdfMaxLineLength {
		value = value[:pdfMaxLineLength-3] + "..."
	}

	key := strconv.Itoa(b.page)
	page := b.doc.Pages[key]

	page.Content.Text = append(page.Content.Text, pdfText{
		Value:    value,
		Position: [2]float64{pdfLeftMargin, b.y},
		Font:     pdfFont{Name: "Helvetica", Size: size},
	})

	b.doc.Pages[key] = page
	b.y -= pdfLineHeight * float64(size) / float64(pdfBodyFontSize)
}

func (b *pdfBuilder) blank() {
	b.y -= pdfLineHeight
}

// RenderPDF writes the report as a PDF file at path.
func RenderPDF(path string, report *Report) error {
	builder := newPDFBuilder()

	builder.line(fmt.Sprintf("Reconnaissance Report: %s", report.Target), pdfTitleFontSize)
	builder.line(fmt.Sprintf("Scanned at %s", report.ScanTime), pdfBodyFontSize)
	builder.blank()

	builder.line("Executive Summary", pdfHeadingFontSize)
	builder.line(fmt.Sprintf("Overall risk level: %s", report.Summary.RiskLevel), pdfBodyFontSize)
	builder.line(fmt.Sprintf("Total findings: %d", report.Summary.TotalFindings), pdfBodyFontSize)

	for _, severity := range types.SeverityOrder {
		builder.line(fmt.Sprintf("  %s: %d", severity, report.Summary.BySeverity[severity]), pdfBodyFontSize)
	}

	builder.blank()
	builder.line(fmt.Sprintf("Probes: %d successful, %d skipped, %d failed",
		len(report.ProbeStatus.Successful), len(report.ProbeStatus.Skipped), len(report.ProbeStatus.Failed)), pdfBodyFontSize)

	for _, severity := range types.SeverityOrder {
		findings := report.Findings[severity]
		if len(findings) == 0 {
			continue
		}

		builder.blank()
		builder.line(severityHeadings[severity], pdfHeadingFontSize)

		for _, finding := range findings {
			builder.line(fmt.Sprintf("- %s [%s]", finding.Title, finding.Probe), pdfBodyFontSize)

			if finding.Description != "" {
				builder.line("  "+finding.Description, pdfBodyFontSize)
			}
		}
	}

	declaration, err := json.Marshal(builder.doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	jsonPath := filepath.Join(os.TempDir(), fmt.Sprintf("vibe-probe-pdf-%d.json", os.Getpid()))
	if err := os.WriteFile(jsonPath, declaration, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	defer func() { _ = os.Remove(jsonPath) }()

	if err := api.CreateFile("", jsonPath, path, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	return nil
}
