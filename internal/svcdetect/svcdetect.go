// Package svcdetect classifies the service listening on an already-known
// open port by connecting and inspecting what it says, grounded on
// original_source/libs/e-libscanner/src/service/detector.rs
// (ServiceDetector/detect_service/ScanServiceResult).
package svcdetect

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConnectTimeout and DefaultReadTimeout mirror the 200ms/5s values
// hardcoded in the Rust ServiceDetector.
const (
	DefaultConnectTimeout = 200 * time.Millisecond
	DefaultReadTimeout    = 5 * time.Second
	maxBannerBytes        = 4096
)

// PortDatabase lists the ports that get a protocol-specific probe instead
// of a passive banner read, mirroring the Rust PortDatabase::default().
type PortDatabase struct {
	HTTPPorts  []uint16
	HTTPSPorts []uint16
}

// DefaultPortDatabase matches the original's default() exactly.
func DefaultPortDatabase() PortDatabase {
	return PortDatabase{
		HTTPPorts:  []uint16{80, 8080},
		HTTPSPorts: []uint16{443, 8443},
	}
}

func (db PortDatabase) isHTTP(port uint16) bool {
	return containsPort(db.HTTPPorts, port)
}

func (db PortDatabase) isHTTPS(port uint16) bool {
	return containsPort(db.HTTPSPorts, port)
}

func containsPort(ports []uint16, port uint16) bool {
	for _, p := range ports {
		if p == port {
			return true
		}
	}
	return false
}

// Detector probes a fixed destination's open ports and reports what
// responded on each, the Go counterpart of the Rust ServiceDetector.
type Detector struct {
	DstIP              net.IP
	DstName            string
	OpenPorts          []uint16
	ConnectTimeout     time.Duration
	ReadTimeout        time.Duration
	AcceptInvalidCerts bool
	PortsConcurrency   int
	PortDB             PortDatabase
}

// New builds a Detector with the original's defaults applied.
func New(dstIP net.IP, openPorts []uint16) *Detector {
	return &Detector{
		DstIP:            dstIP,
		OpenPorts:        openPorts,
		ConnectTimeout:   DefaultConnectTimeout,
		ReadTimeout:      DefaultReadTimeout,
		PortsConcurrency: 100,
		PortDB:           DefaultPortDatabase(),
	}
}

// Result is one port's classification outcome.
type Result struct {
	Port   uint16
	Banner string
	Err    error
}

// ScanServiceResult is the detector's overall report for DstIP, matching
// the shape of the Rust ScanServiceResult (dst_ip, dst_name, ports).
type ScanServiceResult struct {
	DstIP   net.IP
	DstName string
	Ports   []Result
}

// Detect probes every configured port concurrently, bounded by
// PortsConcurrency the same way runConnectPool bounds its own fan-out, and
// returns one Result per port, in OpenPorts order.
func (d *Detector) Detect(ctx context.Context) []Result {
	concurrency := d.PortsConcurrency
	if concurrency <= 0 {
		concurrency = 100
	}

	results := make([]Result, len(d.OpenPorts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, port := range d.OpenPorts {
		i, port := i, port
		g.Go(func() error {
			results[i] = d.probe(gctx, port)
			return nil
		})
	}
	g.Wait()
	return results
}

// Scan runs Detect and wraps it in a ScanServiceResult, the svcdetect
// counterpart of ServiceDetector::scan.
func (d *Detector) Scan(ctx context.Context) ScanServiceResult {
	return ScanServiceResult{
		DstIP:   d.DstIP,
		DstName: d.DstName,
		Ports:   d.Detect(ctx),
	}
}

func (d *Detector) probe(ctx context.Context, port uint16) Result {
	if d.PortDB.isHTTPS(port) {
		banner, err := d.probeHTTPS(port)
		return Result{Port: port, Banner: banner, Err: err}
	}

	addr := net.JoinHostPort(d.DstIP.String(), strconv.Itoa(int(port)))
	dialer := net.Dialer{Timeout: d.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{Port: port, Err: err}
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(d.ReadTimeout))

	if d.PortDB.isHTTP(port) {
		banner, err := d.probeHTTP(conn)
		return Result{Port: port, Banner: banner, Err: err}
	}

	banner, err := readBanner(conn)
	return Result{Port: port, Banner: banner, Err: err}
}

// probeHTTP issues the same HEAD / HTTP/1.0 probe the original sends to
// http_ports and extracts the Server header, falling back to the raw
// response when no such header is present.
func (d *Detector) probeHTTP(conn net.Conn) (string, error) {
	if _, err := fmt.Fprint(conn, "HEAD / HTTP/1.0\r\n\r\n"); err != nil {
		return "", err
	}
	header, err := readBanner(conn)
	if err != nil && header == "" {
		return "", err
	}
	return parseServerHeader(header), nil
}

// probeHTTPS dials TLS directly, mirroring head_request_secure's use of
// native_tls with danger_accept_invalid_certs.
func (d *Detector) probeHTTPS(port uint16) (string, error) {
	if d.DstName == "" {
		return "", fmt.Errorf("svcdetect: no host name set for TLS probe on port %d", port)
	}

	addr := net.JoinHostPort(d.DstName, strconv.Itoa(int(port)))
	dialer := net.Dialer{Timeout: d.ConnectTimeout}
	conn, err := tls.DialWithDialer(&dialer, "tcp", addr, &tls.Config{
		ServerName:         d.DstName,
		InsecureSkipVerify: d.AcceptInvalidCerts,
	})
	if err != nil {
		return "", err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(d.ReadTimeout))
	if _, err := fmt.Fprint(conn, "HEAD / HTTP/1.0\r\n\r\n"); err != nil {
		return "", err
	}

	header, err := readBanner(conn)
	if err != nil && header == "" {
		return "", err
	}
	return parseServerHeader(header), nil
}

// readBanner reads up to maxBannerBytes from conn within whatever deadline
// the caller already set, tolerating a timeout as "that's all there was"
// rather than an error, matching the original's read_response which
// silently discards read errors.
func readBanner(conn net.Conn) (string, error) {
	r := bufio.NewReaderSize(conn, maxBannerBytes)
	buf := make([]byte, maxBannerBytes)
	n, err := r.Read(buf)
	if n == 0 && err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return "", nil
		}
		return "", err
	}
	return string(buf[:n]), nil
}

// parseServerHeader extracts the Server: line the way the original's
// parse_header does, returning the whole response unchanged when it
// doesn't look like an HTTP header block at all.
func parseServerHeader(response string) string {
	fields := strings.Split(response, "\r\n")
	if len(fields) == 1 {
		return response
	}
	for _, f := range fields {
		if strings.Contains(f, "Server:") {
			return strings.TrimSpace(f)
		}
	}
	return ""
}
