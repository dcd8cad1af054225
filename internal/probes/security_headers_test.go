package probes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

func TestGradeSecurityHeaders_FullSet(t *testing.T) {
	headers := http.Header{}
	headers.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
	headers.Set("Content-Security-Policy", "default-src 'self'")
	headers.Set("X-Frame-Options", "DENY")
	headers.Set("X-Content-Type-Options", "nosniff")
	headers.Set("Referrer-Policy", "no-referrer")
	headers.Set("Permissions-Policy", "geolocation=()")
	headers.Set("X-XSS-Protection", "0")

	data := gradeSecurityHeaders(headers)

	assert.Equal(t, 100, data.Metadata["score"])
	assert.Equal(t, "A+", data.Metadata["grade"])

	require.NotEmpty(t, data.Findings)
	assert.Equal(t, "Security header grade: A+", data.Findings[0].Title)
	assert.Equal(t, types.SeverityInfo, data.Findings[0].Severity)
	assert.Len(t, data.Findings, 1, "no per-header findings for a perfect set")
}

func TestGradeSecurityHeaders_Empty(t *testing.T) {
	data := gradeSecurityHeaders(http.Header{})

	assert.Equal(t, 0, data.Metadata["score"])
	assert.Equal(t, "F", data.Metadata["grade"])

	require.NotEmpty(t, data.Findings)
	assert.True(t, strings.HasPrefix(data.Findings[0].Title, "Security header grade"), "grade finding comes first")
	assert.Equal(t, types.SeverityHigh, data.Findings[0].Severity)

	// one grade finding plus one per missing header
	assert.Len(t, data.Findings, len(securityHeaderChecks)+1)
}

func TestGradeSecurityHeaders_WeakValues(t *testing.T) {
	headers := http.Header{}
	headers.Set("Strict-Transport-Security", "max-age=300")
	headers.Set("Content-Security-Policy", "default-src 'self' 'unsafe-inline'")
	headers.Set("X-Frame-Options", "ALLOWALL")
	headers.Set("X-Content-Type-Options", "sniff")
	headers.Set("X-XSS-Protection", "1; mode=block")

	data := gradeSecurityHeaders(headers)

	assert.Equal(t, 0, data.Metadata["score"], "weak values earn no score")
	assert.True(t, hasFindingTitled(data.Findings, "Weak Strict-Transport-Security header"))
	assert.True(t, hasFindingTitled(data.Findings, "Weak Content-Security-Policy header"))
	assert.True(t, hasFindingTitled(data.Findings, "Weak X-Frame-Options header"))
	assert.True(t, hasFindingTitled(data.Findings, "Weak X-XSS-Protection header"))
}

func TestParseHSTSMaxAge(t *testing.T) {
	cases := []struct {
		value string
		want  int
	}{
		{"max-age=31536000", 31536000},
		{"max-age=300; includeSubDomains", 300},
		{"includeSubDomains; max-age=100", 100},
		{"includeSubDomains", 0},
		{"max-age=abc", 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, parseHSTSMaxAge(tc.value), tc.value)
	}
}

func TestScoreToGrade(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "A+"},
		{90, "A+"},
		{85, "A"},
		{70, "B"},
		{55, "C"},
		{40, "D"},
		{10, "F"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, scoreToGrade(tc.score))
	}
}

func TestSecurityHeadersScan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	probe := NewSecurityHeaders()
	probe.Client = server.Client()

	target := strings.TrimPrefix(server.URL, "http://")

	data, err := probe.Scan(context.Background(), target, nil)
	require.NoError(t, err)

	present, ok := data.Metadata["security_headers"].(map[string]string)
	require.True(t, ok)

	assert.Equal(t, "nosniff", present["X-Content-Type-Options"])
	assert.Equal(t, 30, data.Metadata["score"])
}
