package tracert

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// conns bundles the sockets one Tracer run needs: an ICMP listener used
// both to send ICMP-protocol probes and, regardless of probe protocol, to
// receive the TimeExceeded/EchoReply/DestinationUnreachable replies every
// router along the path sends back; plus a protocol-raw socket opened
// only when the selected Protocol needs it for sending. Mirrors the
// teacher's internal/probe/{icmp,udp,tcp}.go one-socket-per-protocol
// split, generalized from "probe a single destination" to "probe with an
// increasing TTL".
type conns struct {
	icmp *icmp.PacketConn
	udp  net.PacketConn
	tcp  net.PacketConn
	id   uint16
}

func openConns(protocol Protocol) (*conns, error) {
	icmpConn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("tracert: open ICMP socket: %w", err)
	}

	c := &conns{icmp: icmpConn, id: uint16(os.Getpid() & 0xffff)}

	switch protocol {
	case ProtoUDP:
		udp, err := net.ListenPacket("ip4:udp", "0.0.0.0")
		if err != nil {
			icmpConn.Close()
			return nil, fmt.Errorf("tracert: open UDP socket: %w", err)
		}
		c.udp = udp
	case ProtoTCP:
		tcp, err := net.ListenPacket("ip4:tcp", "0.0.0.0")
		if err != nil {
			icmpConn.Close()
			return nil, fmt.Errorf("tracert: open TCP socket: %w", err)
		}
		c.tcp = tcp
	}

	return c, nil
}

func (c *conns) close() {
	if c.icmp != nil {
		c.icmp.Close()
	}
	if c.udp != nil {
		c.udp.Close()
	}
	if c.tcp != nil {
		c.tcp.Close()
	}
}

// setTTL sets the IP TTL field new outbound packets on pc carry, the
// mechanism every probe protocol uses to provoke a Time-Exceeded from the
// router at that hop count.
func setTTL(pc net.PacketConn, ttl int) error {
	return ipv4.NewPacketConn(pc).SetTTL(ttl)
}

// setICMPTTL is setTTL's counterpart for the ICMP listener, whose TTL
// control lives behind IPv4PacketConn rather than the plain
// ipv4.NewPacketConn wrapper.
func setICMPTTL(c *icmp.PacketConn, ttl int) error {
	return c.IPv4PacketConn().SetTTL(ttl)
}
