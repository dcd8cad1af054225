package probes

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mminutillo-nflx/vibe-probe/internal/creds"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

const (
	// portDialTimeout bounds each TCP connect attempt
	portDialTimeout = 2 * time.Second
	// portScanConcurrency limits simultaneous connect attempts
	portScanConcurrency = 10
)

// scannedPorts maps the TCP ports probed to their common service names.
var scannedPorts = map[int]string{
	21:    "FTP",
	22:    "SSH",
	23:    "Telnet",
	25:    "SMTP",
	53:    "DNS",
	80:    "HTTP",
	110:   "POP3",
	111:   "RPC",
	135:   "MSRPC",
	139:   "NetBIOS",
	143:   "IMAP",
	443:   "HTTPS",
	445:   "SMB",
	993:   "IMAPS",
	995:   "POP3S",
	1433:  "MSSQL",
	1521:  "Oracle",
	3306:  "MySQL",
	3389:  "RDP",
	5432:  "PostgreSQL",
	5900:  "VNC",
	6379:  "Redis",
	8080:  "HTTP-Proxy",
	8443:  "HTTPS-Alt",
	27017: "MongoDB",
}

// databasePorts is the subset of scannedPorts that should never be
// internet-reachable.
var databasePorts = map[int]bool{
	1433:  true,
	1521:  true,
	3306:  true,
	5432:  true,
	6379:  true,
	27017: true,
}

// Ports performs a TCP connect scan of common service ports.
type Ports struct {
	// DialTimeout bounds each connect attempt
	DialTimeout time.Duration
	// Concurrency limits simultaneous connect attempts
	Concurrency int
	// Resolver resolves the target before scanning
	Resolver *net.Resolver
}

// NewPorts creates a Ports probe with default settings.
func NewPorts() *Ports {
	return &Ports{
		DialTimeout: portDialTimeout,
		Concurrency: portScanConcurrency,
		Resolver:    net.DefaultResolver,
	}
}

// Scan implements the Probe contract. An unresolvable target is a probe
// error, since every port result would otherwise be a false negative.
func (p *Ports) Scan(ctx context.Context, target string, _ creds.Lookup) (*types.ProbeData, error) {
	data := newProbeData()

	addrs, err := p.Resolver.LookupHost(ctx, target)
	if err != nil || len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrHostResolution, target)
	}

	ip := addrs[0]
	data.Metadata["scanned_ip"] = ip
	data.Metadata["ports_scanned"] = len(scannedPorts)

	openPorts := p.connectScan(ctx, ip)

	sort.Ints(openPorts)

	open := make(map[string]string, len(openPorts))
	for _, port := range openPorts {
		open[strconv.Itoa(port)] = scannedPorts[port]

		analyzeOpenPort(port, data)
	}

	data.Metadata["open_ports"] = open

	if len(openPorts) > 0 {
		data.Findings = append(data.Findings, types.Finding{
			Severity:    types.SeverityInfo,
			Title:       "Open ports summary",
			Description: fmt.Sprintf("%d of %d scanned ports are open", len(openPorts), len(scannedPorts)),
			Data:        openPorts,
		})
	}

	return data, nil
}

// connectScan attempts a TCP connection to every scanned port with bounded
// concurrency and returns the ports that accepted.
func (p *Ports) connectScan(ctx context.Context, ip string) []int {
	dialer := &net.Dialer{Timeout: p.DialTimeout}
	semaphore := make(chan struct{}, p.Concurrency)

	var (
		mu        sync.Mutex
		openPorts []int
		wg        sync.WaitGroup
	)

	for port := range scannedPorts {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)

		go func(port int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip, strconv.Itoa(port)))
			if err != nil {
				return
			}

			_ = conn.Close()

			mu.Lock()
			openPorts = append(openPorts, port)
			mu.Unlock()
		}(port)
	}

	wg.Wait()

	return openPorts
}

// analyzeOpenPort derives a finding for ports whose exposure carries risk.
func analyzeOpenPort(port int, data *types.ProbeData) {
	service := scannedPorts[port]

	switch {
	case port == 23 || port == 3389:
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityCritical,
			Title:          fmt.Sprintf("%s port exposed", service),
			Description:    fmt.Sprintf("Port %d (%s) is open to the internet", port, service),
			Recommendation: fmt.Sprintf("Close port %d or restrict access with a firewall", port),
		})
	case databasePorts[port]:
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityCritical,
			Title:          "Database port exposed",
			Description:    fmt.Sprintf("Port %d (%s) is open to the internet", port, service),
			Recommendation: "Database ports should never be internet-reachable; restrict to internal networks",
		})
	case port == 21 || port == 445 || port == 5900:
		data.Findings = append(data.Findings, types.Finding{
			Severity:       types.SeverityHigh,
			Title:          fmt.Sprintf("%s port exposed", service),
			Description:    fmt.Sprintf("Port %d (%s) is open to the internet", port, service),
			Recommendation: fmt.Sprintf("Close port %d or restrict access with a firewall", port),
		})
	}
}
