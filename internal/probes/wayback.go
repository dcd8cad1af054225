package probes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/theopenlane/httpsling"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

const (
	// waybackBaseURL is the Internet Archive CDX API endpoint
	waybackBaseURL = "https://web.archive.org/cdx/search/cdx"
	// waybackRequestTimeout bounds the CDX query
	waybackRequestTimeout = 30 * time.Second
	// waybackSnapshotLimit caps the snapshots requested
	waybackSnapshotLimit = 500
	// waybackTimestampLayout is the CDX timestamp format
	waybackTimestampLayout = "20060102150405"
)

// Wayback queries the Internet Archive for historical snapshots of the
// target, establishing how long the site has been publicly observed.
type Wayback struct {
	// BaseURL is the CDX endpoint, overridable for tests
	BaseURL string
	// Timeout bounds the query
	Timeout time.Duration
}

// NewWayback creates a Wayback probe with default settings.
func NewWayback() *Wayback {
	return &Wayback{
		BaseURL: waybackBaseURL,
		Timeout: waybackRequestTimeout,
	}
}

// Scan implements the Probe contract. The CDX API returns a JSON array of
// rows where the first row is the column header.
func (p *Wayback) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	query := url.Values{}
	query.Set("url", target)
	query.Set("output", "json")
	query.Set("fl", "timestamp,original,statuscode")
	query.Set("limit", fmt.Sprintf("%d", waybackSnapshotLimit))
	query.Set("collapse", "timestamp:8")

	requester := httpsling.MustNew(
		httpsling.URL(p.BaseURL+"?"+query.Encode()),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(&http.Client{Timeout: p.Timeout}),
	)

	var rows [][]string

	resp, err := requester.ReceiveWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("wayback query: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: wayback returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	// First row is the column header
	if len(rows) <= 1 {
		data.Findings = append(data.Findings, types.Finding{
			Severity:    types.SeverityInfo,
			Title:       "No archive history",
			Description: "The Internet Archive has no snapshots of this domain",
		})

		return data, nil
	}

	snapshots := rows[1:]

	firstSeen := parseWaybackTimestamp(snapshots[0])
	lastSeen := parseWaybackTimestamp(snapshots[len(snapshots)-1])

	data.Metadata["snapshot_count"] = len(snapshots)

	description := fmt.Sprintf("%d archived snapshots", len(snapshots))

	if !firstSeen.IsZero() && !lastSeen.IsZero() {
		data.Metadata["first_seen"] = firstSeen.Format(time.RFC3339)
		data.Metadata["last_seen"] = lastSeen.Format(time.RFC3339)
		description = fmt.Sprintf("%d archived snapshots between %s and %s",
			len(snapshots), firstSeen.Format("2006-01-02"), lastSeen.Format("2006-01-02"))
	}

	data.Findings = append(data.Findings, types.Finding{
		Severity:    types.SeverityInfo,
		Title:       "Archive history",
		Description: description,
	})

	return data, nil
}

// parseWaybackTimestamp extracts the timestamp column from a CDX row.
func parseWaybackTimestamp(row []string) time.Time {
	if len(row) == 0 {
		return time.Time{}
	}

	ts, err := time.Parse(waybackTimestampLayout, row[0])
	if err != nil {
		return time.Time{}
	}

	return ts
}
