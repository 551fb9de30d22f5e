package osfp

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
)

// conns bundles the raw, header-included sockets the battery reads IP-level
// fields (id, DF, TTL) from. golang.org/x/net/ipv4.RawConn is the same
// package family the teacher already depends on for TTL control in
// internal/probe/icmp.go, exercised here for its header-included read path
// instead, rather than hand-rolling an IPv4 header parser.
type conns struct {
	icmp *ipv4.RawConn
	tcp  *ipv4.RawConn
	udp  *net.UDPConn
}

func openConns() (*conns, error) {
	icmpPC, err := net.ListenPacket("ip4:1", "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("osfp: open ICMP raw socket: %w", err)
	}
	icmpRaw, err := ipv4.NewRawConn(icmpPC)
	if err != nil {
		icmpPC.Close()
		return nil, fmt.Errorf("osfp: wrap ICMP raw socket: %w", err)
	}

	tcpPC, err := net.ListenPacket("ip4:6", "0.0.0.0")
	if err != nil {
		icmpPC.Close()
		return nil, fmt.Errorf("osfp: open TCP raw socket: %w", err)
	}
	tcpRaw, err := ipv4.NewRawConn(tcpPC)
	if err != nil {
		icmpPC.Close()
		tcpPC.Close()
		return nil, fmt.Errorf("osfp: wrap TCP raw socket: %w", err)
	}

	udp, err := net.ListenUDP("udp4", nil)
	if err != nil {
		icmpPC.Close()
		tcpPC.Close()
		return nil, fmt.Errorf("osfp: open UDP socket: %w", err)
	}

	return &conns{icmp: icmpRaw, tcp: tcpRaw, udp: udp}, nil
}

func (c *conns) close() {
	if c.icmp != nil {
		c.icmp.Close()
	}
	if c.tcp != nil {
		c.tcp.Close()
	}
	if c.udp != nil {
		c.udp.Close()
	}
}
