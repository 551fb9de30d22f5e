// Package scan implements the probe engine's port/host scan orchestrator:
// target sweep, packet emission, reply correlation, and the connect-based
// fallback path. It is grounded on the original scanner's frame/result.rs
// data model and sync_scan/unix.rs send/receive loops
// (original_source/libs/e-libscanner/src/{frame/result.rs,sync_scan/unix.rs}),
// reworked into the teacher's goroutine-and-channel idiom from
// internal/probe and internal/trace.
package scan

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/berkaydemir/netraven/internal/portdb"
)

// Defaults mirror data/id.rs's DEFAULT_SRC_PORT / DEFAULT_HOSTS_CONCURRENCY /
// DEFAULT_PORTS_CONCURRENCY.
const (
	DefaultSrcPort           uint16 = 53443
	DefaultHostsConcurrency         = 50
	DefaultPortsConcurrency         = 100
	DefaultConnectTimeout           = 200 * time.Millisecond
)

// ScanType selects the probe strategy and wire protocol.
type ScanType int

const (
	IcmpPingScan ScanType = iota
	TcpPingScan
	UdpPingScan
	TcpConnectScan
	TcpSynScan
)

func (t ScanType) String() string {
	switch t {
	case IcmpPingScan:
		return "icmp_ping"
	case TcpPingScan:
		return "tcp_ping"
	case UdpPingScan:
		return "udp_ping"
	case TcpConnectScan:
		return "tcp_connect"
	case TcpSynScan:
		return "tcp_syn"
	default:
		return "unknown"
	}
}

// usesRawSockets reports whether t needs raw packet emission rather than
// the connect pool.
func (t ScanType) usesRawSockets() bool {
	return t != TcpConnectScan
}

// PortStatus is the three-way classification a receiver or the connect
// pool assigns to an observed (ip, port) pair.
type PortStatus int

const (
	Open PortStatus = iota
	Closed
	Filtered
)

func (s PortStatus) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Filtered:
		return "filtered"
	default:
		return "unknown"
	}
}

// PortInfo is one observed port, labeled with its well-known service name.
type PortInfo struct {
	Port    uint16
	Status  PortStatus
	Service string
}

func newPortInfo(port uint16, status PortStatus) PortInfo {
	return PortInfo{Port: port, Status: status, Service: portdb.Lookup(port)}
}

// HostInfo is one observed live host, with the IP TTL of its first
// accepted reply.
type HostInfo struct {
	IP  net.IP
	TTL uint8
}

// Status is the scan's terminal lifecycle state.
type Status int

const (
	Ready Status = iota
	Done
	Timeout
	Error
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Done:
		return "done"
	case Timeout:
		return "timeout"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Destination is one target IP and its ordered, duplicate-preserving list
// of ports. An empty port list means "host-level probe only".
type Destination struct {
	IP    net.IP
	Ports []uint16
}

// ScanSetting is the immutable bundle the orchestrator is constructed from.
// It is never mutated after scan() begins.
type ScanSetting struct {
	SrcIP   net.IP
	SrcPort uint16

	Destinations []Destination
	ScanType     ScanType

	Timeout  time.Duration
	WaitTime time.Duration
	SendRate time.Duration

	HostsConcurrency int
	PortsConcurrency int

	// Async selects the cooperative bounded-concurrency sender over the
	// simple sequential one. Ignored for TcpConnectScan, which always
	// uses the connect pool's own concurrency model.
	Async bool
}

// withDefaults returns a copy of s with zero-valued tunables replaced by
// their documented defaults.
func (s ScanSetting) withDefaults() ScanSetting {
	if s.SrcPort == 0 {
		s.SrcPort = DefaultSrcPort
	}
	if s.HostsConcurrency == 0 {
		s.HostsConcurrency = DefaultHostsConcurrency
	}
	if s.PortsConcurrency == 0 {
		s.PortsConcurrency = DefaultPortsConcurrency
	}
	if s.WaitTime == 0 {
		s.WaitTime = 3 * time.Second
	}
	if s.Timeout == 0 {
		s.Timeout = time.Hour
	}
	return s
}

// destIPs returns the set of destination IPs in s, in plan order.
func (s ScanSetting) destIPs() []net.IP {
	out := make([]net.IP, len(s.Destinations))
	for i, d := range s.Destinations {
		out[i] = d.IP
	}
	return out
}

// hasIPv6 reports whether any destination is an IPv6 address.
func (s ScanSetting) hasIPv6() bool {
	for _, d := range s.Destinations {
		if d.IP.To4() == nil {
			return true
		}
	}
	return false
}

// Validate rejects settings the engine cannot execute safely, per the
// IPv6 raw-emission parity decision: raw-packet scan types refuse IPv6
// destinations outright rather than risk malformed frames.
func (s ScanSetting) Validate() error {
	if s.ScanType.usesRawSockets() && s.hasIPv6() {
		return ErrIPv6RawUnsupported
	}
	return nil
}

// ScanResult is the accumulated, caller-facing outcome of one scan.
type ScanResult struct {
	Hosts   []HostInfo
	Ports   map[string][]PortInfo // keyed by HostInfo.IP.String()
	Elapsed time.Duration
	Status  Status
}

// GetHosts returns the scan's live hosts, mirroring ScanResult::get_hosts
// in the original frame/result.rs.
func (r ScanResult) GetHosts() []HostInfo { return r.Hosts }

// GetOpenPorts returns only the Open PortInfo entries for ip, mirroring
// ScanResult::get_open_ports.
func (r ScanResult) GetOpenPorts(ip net.IP) []PortInfo {
	var out []PortInfo
	for _, p := range r.Ports[ip.String()] {
		if p.Status == Open {
			out = append(out, p)
		}
	}
	return out
}

// Errors surfaced by the orchestrator. Per spec, these are the only fatal
// conditions; everything else degrades silently into partial coverage.
var (
	ErrInterfaceNotFound   = errors.New("scan: interface not found")
	ErrRawSocketOpenFailed = errors.New("scan: failed to open raw socket")
	ErrIPv6RawUnsupported  = errors.New("scan: IPv6 is not supported for this scan type's raw packet emission")
)

// scanResults is the internal, mutex-guarded accumulator the receiver and
// connect pool write into. It enforces the dedup invariants from spec §8:
// each ip appears once in ips, each (ip,port) appears once per ip.
type scanResults struct {
	mu sync.Mutex

	ipOrder []string
	ips     map[string]HostInfo

	portOrder map[string][]uint16
	ports     map[string]map[uint16]PortInfo
}

func newScanResults() *scanResults {
	return &scanResults{
		ips:       make(map[string]HostInfo),
		portOrder: make(map[string][]uint16),
		ports:     make(map[string]map[uint16]PortInfo),
	}
}

// recordHost records a live host if not already seen, keeping the TTL of
// the first accepted reply.
func (r *scanResults) recordHost(ip net.IP, ttl uint8) {
	key := ip.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ips[key]; ok {
		return
	}
	r.ips[key] = HostInfo{IP: ip, TTL: ttl}
	r.ipOrder = append(r.ipOrder, key)
}

// recordPort records a port observation, skipping it if that (ip,port)
// pair was already recorded.
func (r *scanResults) recordPort(ip net.IP, port uint16, status PortStatus) {
	key := ip.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.ports[key]
	if !ok {
		m = make(map[uint16]PortInfo)
		r.ports[key] = m
	}
	if _, ok := m[port]; ok {
		return
	}
	m[port] = newPortInfo(port, status)
	r.portOrder[key] = append(r.portOrder[key], port)
}

// drain converts the accumulator into a caller-facing ScanResult. It does
// not reset internal state; a scanResults is used for exactly one scan.
func (r *scanResults) drain() ScanResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	hosts := make([]HostInfo, 0, len(r.ipOrder))
	for _, k := range r.ipOrder {
		hosts = append(hosts, r.ips[k])
	}

	ports := make(map[string][]PortInfo, len(r.ports))
	for ip, order := range r.portOrder {
		m := r.ports[ip]
		list := make([]PortInfo, 0, len(order))
		for _, p := range order {
			list = append(list, m[p])
		}
		ports[ip] = list
	}

	return ScanResult{Hosts: hosts, Ports: ports}
}

// planContainsPort reports whether (ip,port) appears anywhere in the
// scan plan, used by the receiver to reject spurious observations per the
// §8 invariant.
func planContainsPort(dests []Destination, ip net.IP, port uint16) bool {
	for _, d := range dests {
		if !d.IP.Equal(ip) {
			continue
		}
		for _, p := range d.Ports {
			if p == port {
				return true
			}
		}
	}
	return false
}

func ipKey(ip net.IP) string { return ip.String() }
