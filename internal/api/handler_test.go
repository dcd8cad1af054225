package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// mockScanner implements TargetScanner for handler tests
type mockScanner struct {
	shouldError bool
	lastTarget  string
}

func (m *mockScanner) ScanTarget(_ context.Context, target string) (*types.ScanResult, error) {
	m.lastTarget = target

	if m.shouldError {
		return nil, errors.New("mock scanner error")
	}

	return &types.ScanResult{
		Target:   target,
		ScanTime: "2025-06-01T10:00:00Z",
		Probes: map[string]types.ProbeOutcome{
			"dns": {Status: types.StatusSuccess, Priority: types.PriorityCritical},
		},
	}, nil
}

func postScan(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	return w
}

func TestHandleHealth(t *testing.T) {
	handler := NewRouter(&mockScanner{}, time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "vibe-probe", resp.Service)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestHandleScan_Domain(t *testing.T) {
	scanner := &mockScanner{}
	handler := NewRouter(scanner, time.Minute)

	w := postScan(t, handler, `{"domain": "example.com"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ScanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "example.com", resp.Data.Target)
	assert.Equal(t, "example.com", scanner.lastTarget)
}

func TestHandleScan_EmailExtractsDomain(t *testing.T) {
	scanner := &mockScanner{}
	handler := NewRouter(scanner, time.Minute)

	w := postScan(t, handler, `{"email": "user@example.org"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "example.org", scanner.lastTarget)
}

func TestHandleScan_URLNormalized(t *testing.T) {
	scanner := &mockScanner{}
	handler := NewRouter(scanner, time.Minute)

	w := postScan(t, handler, `{"domain": "https://www.example.com:8443/path"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "www.example.com", scanner.lastTarget)
}

func TestHandleScan_MissingTarget(t *testing.T) {
	handler := NewRouter(&mockScanner{}, time.Minute)

	w := postScan(t, handler, `{}`)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ScanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, ErrDomainOrEmailRequired.Error(), resp.Error)
}

func TestHandleScan_InvalidBody(t *testing.T) {
	handler := NewRouter(&mockScanner{}, time.Minute)

	w := postScan(t, handler, `not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleScan_UnknownField(t *testing.T) {
	handler := NewRouter(&mockScanner{}, time.Minute)

	w := postScan(t, handler, `{"domain": "example.com", "extra": true}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleScan_MultipleJSONObjects(t *testing.T) {
	handler := NewRouter(&mockScanner{}, time.Minute)

	w := postScan(t, handler, `{"domain": "example.com"}{"domain": "other.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleScan_InvalidDomain(t *testing.T) {
	handler := NewRouter(&mockScanner{}, time.Minute)

	w := postScan(t, handler, `{"domain": "not_a_domain"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleScan_ScannerError(t *testing.T) {
	handler := NewRouter(&mockScanner{shouldError: true}, time.Minute)

	w := postScan(t, handler, `{"domain": "example.com"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ScanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}
