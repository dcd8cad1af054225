package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

func TestRenderMarkdown(t *testing.T) {
	report := Aggregate(sampleScanResult(), sampleOrder)

	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "# Reconnaissance Report: example.com")
	assert.Contains(t, out, "## Executive Summary")
	assert.Contains(t, out, "**Overall risk level:** critical")
	assert.Contains(t, out, "| Severity | Findings |")
	assert.Contains(t, out, "## Critical Findings")
	assert.Contains(t, out, "### Zone transfer allowed")
	assert.Contains(t, out, "- Skipped: shodan")
	assert.Contains(t, out, "- Failed: ports")
	assert.NotContains(t, out, "Medium Severity Findings")
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	report := Aggregate(sampleScanResult(), sampleOrder)

	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, report))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, report.Target, decoded.Target)
	assert.Equal(t, report.Summary.TotalFindings, decoded.Summary.TotalFindings)
	assert.Equal(t, report.ProbeStatus, decoded.ProbeStatus)
}

func TestRenderHTML(t *testing.T) {
	report := Aggregate(sampleScanResult(), sampleOrder)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "<title>Reconnaissance Report: example.com</title>")
	assert.Contains(t, out, `<div class="finding critical">`)
	assert.Contains(t, out, "<h3>Zone transfer allowed</h3>")
	assert.Contains(t, out, "Certificate expiring soon")
}

func TestRenderHTML_EscapesFindingContent(t *testing.T) {
	report := Aggregate(&types.ScanResult{
		Target: "example.com",
		Probes: map[string]types.ProbeOutcome{
			"http": {Status: types.StatusSuccess, Data: &types.ProbeData{
				Findings: []types.Finding{{
					Severity:    types.SeverityLow,
					Title:       "<script>alert(1)</script>",
					Description: "body contains <b>markup</b>",
				}},
			}},
		},
	}, []string{"http"})

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, report))

	out := buf.String()
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestWriteAll_SingleFormat(t *testing.T) {
	dir := t.TempDir()
	report := Aggregate(sampleScanResult(), sampleOrder)

	written, err := WriteAll(dir, FormatJSON, report)
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, filepath.Join(dir, "report.json"), written[0])

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestWriteAll_AllFormats(t *testing.T) {
	dir := t.TempDir()
	report := Aggregate(sampleScanResult(), sampleOrder)

	written, err := WriteAll(dir, FormatAll, report)
	require.NoError(t, err)
	require.Len(t, written, 4)

	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
}

func TestWriteAll_UnsupportedFormat(t *testing.T) {
	_, err := WriteAll(t.TempDir(), "xml", Aggregate(sampleScanResult(), sampleOrder))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWriteAll_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "example.com", "20250601_100000")
	report := Aggregate(sampleScanResult(), sampleOrder)

	written, err := WriteAll(dir, FormatMarkdown, report)
	require.NoError(t, err)
	require.Len(t, written, 1)

	_, err = os.Stat(written[0])
	assert.NoError(t, err)
}
