// Package iface discovers the local outbound IP and the interface that
// owns a given source address. The engine sends at the IP layer (see
// internal/scan's rawConns), where the kernel performs its own routing and
// ARP, so discovery stops at "which local interface is this" rather than
// resolving link-layer (MAC) details no component consumes.
package iface

import (
	"errors"
	"net"
)

// ErrNotFound is returned when no usable interface can be identified for a
// requested address.
var ErrNotFound = errors.New("interface not found")

// Info describes the interface that owns a given source address.
type Info struct {
	Index int
	Name  string
	MAC   net.HardwareAddr
}

// probeAddr is a documentation-range (RFC 5737) address used only to make
// the kernel pick a source route; UDP "connecting" to it never sends a
// packet on the wire.
const probeAddr = "203.0.113.1:53"

// LocalIP returns the source address the kernel would choose when routing
// toward a generic external destination. It requires no elevated
// privileges because no packet is actually transmitted.
func LocalIP() (net.IP, error) {
	conn, err := net.Dial("udp4", probeAddr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return nil, ErrNotFound
	}
	return addr.IP, nil
}

// InterfaceFor returns the index, name, and MAC address of the network
// interface that owns srcIP. If srcIP is nil, LocalIP is used instead.
func InterfaceFor(srcIP net.IP) (Info, error) {
	if srcIP == nil {
		ip, err := LocalIP()
		if err != nil {
			return Info{}, err
		}
		srcIP = ip
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return Info{}, err
	}

	for _, ifc := range ifaces {
		addrs, err := ifc.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if ipNet.IP.Equal(srcIP) {
				return Info{Index: ifc.Index, Name: ifc.Name, MAC: ifc.HardwareAddr}, nil
			}
		}
	}

	return Info{}, ErrNotFound
}
