package scan

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/net/icmp"

	"github.com/berkaydemir/netraven/internal/iface"
)

// rawConns bundles the sockets one raw-packet scan needs: an ICMP
// listener (used directly for IcmpPingScan, and alongside the protocol
// socket for Destination-Unreachable correlation on TCP/UDP scans) and,
// for TCP/UDP scan types, a protocol-raw socket used for both send and
// receive — mirroring the teacher's TCPProber/UDPProber, which open
// exactly these two connection kinds in internal/probe/{tcp,udp,icmp}.go.
type rawConns struct {
	icmpConn  *icmp.PacketConn
	protoConn net.PacketConn
	id        uint16
}

// openRawConns resolves st.SrcIP to a local interface before opening any
// socket, per spec.md §2's dependency order (interface discovery feeds the
// raw-socket open step): this engine sends at the IP layer, where the
// kernel performs its own routing and ARP, so the piece of interface
// discovery that step actually needs is confirming SrcIP is a real local
// address, not resolving link-layer (MAC) details. Sockets are then bound
// to that address instead of the wildcard, so replies on a multi-homed
// host are only ever read on the interface the probes were sent from.
func openRawConns(st ScanSetting) (*rawConns, error) {
	addr := "0.0.0.0"
	if st.SrcIP != nil {
		if _, err := iface.InterfaceFor(st.SrcIP); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInterfaceNotFound, st.SrcIP, err)
		}
		addr = st.SrcIP.String()
	}

	icmpConn, err := icmp.ListenPacket("ip4:icmp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRawSocketOpenFailed, err)
	}

	rc := &rawConns{icmpConn: icmpConn, id: uint16(os.Getpid() & 0xffff)}

	switch st.ScanType {
	case TcpPingScan, TcpSynScan:
		proto, err := net.ListenPacket("ip4:tcp", addr)
		if err != nil {
			icmpConn.Close()
			return nil, fmt.Errorf("%w: %v", ErrRawSocketOpenFailed, err)
		}
		rc.protoConn = proto
	case UdpPingScan:
		proto, err := net.ListenPacket("ip4:udp", addr)
		if err != nil {
			icmpConn.Close()
			return nil, fmt.Errorf("%w: %v", ErrRawSocketOpenFailed, err)
		}
		rc.protoConn = proto
	}

	return rc, nil
}

func (c *rawConns) close() {
	if c.icmpConn != nil {
		c.icmpConn.Close()
	}
	if c.protoConn != nil {
		c.protoConn.Close()
	}
}
