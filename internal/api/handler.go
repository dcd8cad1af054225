// Package api provides the HTTP surface for running scans as a service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mminutillo-nflx/vibe-probe/internal/domain"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// defaultScanTimeout bounds a single scan request
const defaultScanTimeout = 5 * time.Minute

// TargetScanner runs the probe suite against a normalized target.
type TargetScanner interface {
	ScanTarget(ctx context.Context, target string) (*types.ScanResult, error)
}

// Handler serves the scan and health endpoints.
type Handler struct {
	scanner     TargetScanner
	scanTimeout time.Duration
}

// NewHandler creates a Handler around a scanner. A zero scanTimeout uses the
// default.
func NewHandler(scanner TargetScanner, scanTimeout time.Duration) *Handler {
	if scanTimeout <= 0 {
		scanTimeout = defaultScanTimeout
	}

	return &Handler{scanner: scanner, scanTimeout: scanTimeout}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   "vibe-probe",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ScanRequest accepts either a domain or an email address; for an email the
// domain part is scanned.
type ScanRequest struct {
	Domain string `json:"domain,omitempty"`
	Email  string `json:"email,omitempty"`
}

// ScanResponse wraps a scan result.
type ScanResponse struct {
	Success bool              `json:"success"`
	Data    *types.ScanResult `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondWithError(w, ErrInvalidRequestBody.Error(), http.StatusBadRequest)
		return
	}

	input := req.Domain
	if input == "" {
		input = req.Email
	}

	if input == "" {
		respondWithError(w, ErrDomainOrEmailRequired.Error(), http.StatusBadRequest)
		return
	}

	info, err := domain.Parse(input)
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.scanTimeout)
	defer cancel()

	result, err := h.scanner.ScanTarget(ctx, info.Domain)
	if err != nil {
		log.Error().Err(err).Str("target", info.Domain).Msg("scan request failed")
		respondWithError(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, ScanResponse{Success: true, Data: result})
}

// respondWithError sends a JSON error payload.
func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ScanResponse{Success: false, Error: message})
}
