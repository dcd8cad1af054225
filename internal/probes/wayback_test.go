package probes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaybackScan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "example.com", r.URL.Query().Get("url"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			["timestamp","original","statuscode"],
			["20050315000000","http://example.com/","200"],
			["20150601120000","http://example.com/","200"],
			["20250102030405","https://example.com/","200"]
		]`))
	}))
	defer server.Close()

	probe := NewWayback()
	probe.BaseURL = server.URL

	data, err := probe.Scan(context.Background(), "example.com", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, data.Metadata["snapshot_count"])
	assert.Equal(t, "2005-03-15T00:00:00Z", data.Metadata["first_seen"])
	assert.Equal(t, "2025-01-02T03:04:05Z", data.Metadata["last_seen"])

	require.Len(t, data.Findings, 1)
	assert.Contains(t, data.Findings[0].Description, "3 archived snapshots")
}

func TestWaybackScan_NoHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	probe := NewWayback()
	probe.BaseURL = server.URL

	data, err := probe.Scan(context.Background(), "never-archived.example", nil)
	require.NoError(t, err)

	assert.True(t, hasFindingTitled(data.Findings, "No archive history"))
}
