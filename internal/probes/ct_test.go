package probes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateTransparencyScan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "%.example.com", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("output"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "issuer_name": "C=US, O=Let's Encrypt", "common_name": "example.com", "name_value": "example.com\nwww.example.com"},
			{"id": 2, "issuer_name": "C=US, O=Let's Encrypt", "common_name": "*.example.com", "name_value": "*.example.com"},
			{"id": 3, "issuer_name": "C=US, O=Let's Encrypt", "common_name": "staging.example.com", "name_value": "staging.example.com"}
		]`))
	}))
	defer server.Close()

	probe := NewCertificateTransparency()
	probe.BaseURL = server.URL

	data, err := probe.Scan(context.Background(), "example.com", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, data.Metadata["certificate_count"])
	assert.Equal(t, 3, data.Metadata["hostname_count"])

	names, ok := data.Metadata["hostnames"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"example.com", "staging.example.com", "www.example.com"}, names)

	assert.True(t, hasFindingTitled(data.Findings, "Certificate transparency summary"))
	assert.True(t, hasFindingTitled(data.Findings, "Wildcard certificates issued"))
	assert.True(t, hasFindingTitled(data.Findings, "Internal hostnames disclosed in CT logs"))
}

func TestCertificateTransparencyScan_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	probe := NewCertificateTransparency()
	probe.BaseURL = server.URL

	_, err := probe.Scan(context.Background(), "example.com", nil)
	require.Error(t, err)
}

func TestCollectCertificateNames_Dedupe(t *testing.T) {
	entries := []ctEntry{
		{NameValue: "a.example.com\na.example.com"},
		{NameValue: "A.EXAMPLE.COM"},
		{NameValue: "other-domain.net"},
	}

	names, wildcards := collectCertificateNames(entries, "example.com")

	assert.Equal(t, []string{"a.example.com"}, names)
	assert.Empty(t, wildcards)
}
