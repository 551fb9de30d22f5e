package osfp

import (
	"encoding/binary"
	"math/rand"
	"net"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/berkaydemir/netraven/internal/packet"
)

// probeTimeout is the fixed per-probe timeout from spec.md §4.8: "a fixed
// small value (default 300 ms)". A missing reply within this window
// leaves the corresponding result field unset, not an error.
const probeTimeout = 300 * time.Millisecond

func writeIP(conn *ipv4.RawConn, src, dst net.IP, proto int, id int, df bool, ttl int, payload []byte) error {
	h := &ipv4.Header{
		Version:  4,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + len(payload),
		ID:       id,
		TTL:      ttl,
		Protocol: proto,
		Dst:      dst.To4(),
		Src:      src.To4(),
	}
	if df {
		h.Flags = ipv4.DontFragment
	}
	return conn.WriteTo(h, payload, nil)
}

// readMatching polls conn until match returns true or the deadline
// elapses, returning the matching header and payload.
func readMatching(conn *ipv4.RawConn, deadline time.Time, match func(*ipv4.Header, []byte) bool) (*ipv4.Header, []byte, bool) {
	buf := make([]byte, 1500)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil, false
		}
		conn.SetReadDeadline(time.Now().Add(remaining))
		h, p, _, err := conn.ReadFrom(buf)
		if err != nil {
			return nil, nil, false
		}
		if match(h, p) {
			cp := make([]byte, len(p))
			copy(cp, p)
			return h, cp, true
		}
	}
}

func newID() int {
	return rand.Intn(0xffff) + 1 // 1..65535: avoid 0, distinguishable from an unset field
}

func runIcmpEcho(c *conns, srcIP net.IP, t ProbeTarget) *IcmpEchoResult {
	id, seq := newID(), 1
	msg := packet.BuildICMPEcho(packet.ICMPEchoRequest, 0, uint16(id), uint16(seq), []byte("netraven-osfp"))
	if err := writeIP(c.icmp, srcIP, t.IP, 1, id, true, 64, msg); err != nil {
		return nil
	}

	deadline := time.Now().Add(probeTimeout)
	h, p, ok := readMatching(c.icmp, deadline, func(h *ipv4.Header, p []byte) bool {
		return h.Src.Equal(t.IP) && len(p) >= 8 && p[0] == packet.ICMPEchoReply
	})
	if !ok {
		return nil
	}
	return &IcmpEchoResult{
		EchoReply: true,
		EchoCode:  p[1],
		IPID:      uint16(h.ID),
		IPDF:      h.Flags&ipv4.DontFragment != 0,
		IPTTL:     uint8(h.TTL),
	}
}

func runIcmpTimestamp(c *conns, srcIP net.IP, t ProbeTarget) *IcmpTimestampResult {
	id := newID()
	msg := packet.BuildICMPTimestamp(packet.ICMPTimestampRequest, 0, uint16(id), 1, 0, 0, 0)
	if err := writeIP(c.icmp, srcIP, t.IP, 1, id, true, 64, msg); err != nil {
		return nil
	}

	deadline := time.Now().Add(probeTimeout)
	h, p, ok := readMatching(c.icmp, deadline, func(h *ipv4.Header, p []byte) bool {
		return h.Src.Equal(t.IP) && len(p) >= 1 && p[0] == packet.ICMPTimestampReply
	})
	if !ok {
		return nil
	}
	return &IcmpTimestampResult{TimestampReply: true, IPID: uint16(h.ID), IPTTL: uint8(h.TTL)}
}

func runIcmpAddressMask(c *conns, srcIP net.IP, t ProbeTarget) *IcmpAddressMaskResult {
	id := newID()
	msg := packet.BuildICMPAddressMask(packet.ICMPAddressMaskRequest, 0, uint16(id), 1, 0)
	if err := writeIP(c.icmp, srcIP, t.IP, 1, id, true, 64, msg); err != nil {
		return nil
	}

	deadline := time.Now().Add(probeTimeout)
	h, p, ok := readMatching(c.icmp, deadline, func(h *ipv4.Header, p []byte) bool {
		return h.Src.Equal(t.IP) && len(p) >= 1 && p[0] == packet.ICMPAddressMaskReply
	})
	if !ok {
		return nil
	}
	return &IcmpAddressMaskResult{AddressMaskReply: true, IPID: uint16(h.ID), IPTTL: uint8(h.TTL)}
}

func runIcmpInformation(c *conns, srcIP net.IP, t ProbeTarget) *IcmpInformationResult {
	id := newID()
	msg := packet.BuildICMPInformation(packet.ICMPInfoRequest, 0, uint16(id), 1)
	if err := writeIP(c.icmp, srcIP, t.IP, 1, id, true, 64, msg); err != nil {
		return nil
	}

	deadline := time.Now().Add(probeTimeout)
	h, p, ok := readMatching(c.icmp, deadline, func(h *ipv4.Header, p []byte) bool {
		return h.Src.Equal(t.IP) && len(p) >= 1 && p[0] == packet.ICMPInfoReply
	})
	if !ok {
		return nil
	}
	return &IcmpInformationResult{InformationReply: true, IPID: uint16(h.ID), IPTTL: uint8(h.TTL)}
}

// runIcmpUnreachable sends a UDP datagram to the target's known-closed UDP
// port and inspects the Destination-Unreachable it should provoke,
// recovering both the responder's own IP fields and the fields echoed
// back from our original datagram.
func runIcmpUnreachable(c *conns, t ProbeTarget) (*IcmpUnreachableIPResult, *IcmpUnreachableOriginalDataResult) {
	dst := &net.UDPAddr{IP: t.IP, Port: int(t.ClosedUDPPort)}
	if _, err := c.udp.WriteTo([]byte("netraven-osfp"), dst); err != nil {
		return nil, nil
	}

	deadline := time.Now().Add(probeTimeout)
	h, p, ok := readMatching(c.icmp, deadline, func(h *ipv4.Header, p []byte) bool {
		return h.Src.Equal(t.IP) && len(p) >= 8 && p[0] == packet.ICMPDestUnreachable
	})
	if !ok {
		return nil, nil
	}

	ipResult := &IcmpUnreachableIPResult{
		UnreachableReply: true,
		UnreachableSize:  uint16(len(p)),
		IPTotalLength:    uint16(h.TotalLen),
		IPID:             uint16(h.ID),
		IPDF:             h.Flags&ipv4.DontFragment != 0,
		IPTTL:            uint8(h.TTL),
	}

	embedded := packet.EmbeddedDatagram(p[4:])
	proto, hlen, ok := packet.IPv4ProtocolAndHeaderLen(embedded)
	if !ok || proto != 17 || len(embedded) < hlen+8 {
		return ipResult, nil
	}
	udp, ok := packet.ParseUDP(embedded[hlen:])
	if !ok {
		return ipResult, nil
	}
	dataResult := &IcmpUnreachableOriginalDataResult{
		UDPChecksum:      binary.BigEndian.Uint16(embedded[hlen+6 : hlen+8]),
		UDPHeaderLength:  8,
		UDPPayloadLength: uint16(len(udp.Payload)),
		IPChecksum:       binary.BigEndian.Uint16(embedded[10:12]),
		IPID:             binary.BigEndian.Uint16(embedded[4:6]),
		IPTotalLength:    binary.BigEndian.Uint16(embedded[2:4]),
		IPDF:             embedded[6]&0x40 != 0,
		IPTTL:            embedded[8],
	}
	return ipResult, dataResult
}

func runTcpSynAck(c *conns, srcIP net.IP, t ProbeTarget) *TcpSynAckResult {
	if len(t.OpenTCPPorts) == 0 {
		return nil
	}
	h, seg, ok := tcpExchange(c, srcIP, t.IP, t.OpenTCPPorts[0], packet.FlagSYN, nil)
	if !ok {
		return nil
	}
	return classifyTcpSynAck(h, seg)
}

// classifyTcpSynAck is the pure decision over an already-received reply,
// split out from runTcpSynAck so the classification rule can be tested
// without opening raw sockets.
func classifyTcpSynAck(h *ipv4.Header, seg packet.ParsedTCP) *TcpSynAckResult {
	if !seg.Flags.Has(packet.FlagSYN | packet.FlagACK) {
		return nil
	}
	return &TcpSynAckResult{
		SynAckResponse: true,
		IPID:           uint16(h.ID),
		IPDF:           h.Flags&ipv4.DontFragment != 0,
		IPTTL:          uint8(h.TTL),
	}
}

func runTcpRstAck(c *conns, srcIP net.IP, t ProbeTarget) *TcpRstAckResult {
	h, seg, ok := tcpExchange(c, srcIP, t.IP, t.ClosedTCPPort, packet.FlagSYN, nil)
	if !ok {
		return nil
	}
	return classifyTcpRstAck(h, seg)
}

func classifyTcpRstAck(h *ipv4.Header, seg packet.ParsedTCP) *TcpRstAckResult {
	if !seg.Flags.Has(packet.FlagRST) {
		return nil
	}
	return &TcpRstAckResult{
		RstAckResponse: true,
		TCPPayloadSize: uint16(len(seg.Payload)),
		IPID:           uint16(h.ID),
		IPDF:           h.Flags&ipv4.DontFragment != 0,
		IPTTL:          uint8(h.TTL),
	}
}

func runTcpEcn(c *conns, srcIP net.IP, t ProbeTarget) *TcpEcnResult {
	if len(t.OpenTCPPorts) == 0 {
		return nil
	}
	h, seg, ok := tcpExchange(c, srcIP, t.IP, t.OpenTCPPorts[0], packet.FlagSYN|packet.FlagCWR|packet.FlagECE, nil)
	if !ok {
		return nil
	}
	return classifyTcpEcn(h, seg)
}

func classifyTcpEcn(h *ipv4.Header, seg packet.ParsedTCP) *TcpEcnResult {
	if !seg.Flags.Has(packet.FlagSYN | packet.FlagACK | packet.FlagECE) {
		return nil
	}
	return &TcpEcnResult{
		SynAckEceResponse: true,
		TCPPayloadSize:    uint16(len(seg.Payload)),
		IPID:              uint16(h.ID),
		IPDF:              h.Flags&ipv4.DontFragment != 0,
		IPTTL:             uint8(h.TTL),
	}
}

// fingerprintOptions is the exact option sequence whose ordering, not just
// presence, is the TcpHeader probe's signal (spec.md §4.8).
func fingerprintOptions() []packet.Option {
	return []packet.Option{
		{Kind: packet.OptKindMSS, Data: []byte{0x05, 0xb4}},
		{Kind: packet.OptKindSACKPerm},
		{Kind: packet.OptKindTimestamp, Data: make([]byte, 8)},
		{Kind: packet.OptKindNOP},
		{Kind: packet.OptKindWScale, Data: []byte{0x07}},
	}
}

func runTcpHeader(c *conns, srcIP net.IP, t ProbeTarget) *TcpHeaderResult {
	if len(t.OpenTCPPorts) == 0 {
		return nil
	}
	_, seg, ok := tcpExchange(c, srcIP, t.IP, t.OpenTCPPorts[0], packet.FlagSYN, fingerprintOptions())
	if !ok {
		return nil
	}
	return &TcpHeaderResult{WindowSize: seg.Window, OptionOrder: seg.OptionOrder}
}

// tcpExchange sends one crafted TCP segment and waits for any reply from
// the target addressed back to our source port.
func tcpExchange(c *conns, src, dst net.IP, dstPort uint16, flags packet.TCPFlags, options []packet.Option) (*ipv4.Header, packet.ParsedTCP, bool) {
	srcPort := uint16(40000 + rand.Intn(10000))
	seg := packet.TCPSegment{
		Src: src, Dst: dst,
		SrcPort: srcPort, DstPort: dstPort,
		Seq: rand.Uint32(), Flags: flags, Window: 65535,
		Options: options,
	}
	raw, err := packet.BuildTCP(seg)
	if err != nil {
		return nil, packet.ParsedTCP{}, false
	}
	id := newID()
	if err := writeIP(c.tcp, src, dst, 6, id, true, 64, raw); err != nil {
		return nil, packet.ParsedTCP{}, false
	}

	deadline := time.Now().Add(probeTimeout)
	var result packet.ParsedTCP
	h, _, ok := readMatching(c.tcp, deadline, func(h *ipv4.Header, p []byte) bool {
		if !h.Src.Equal(dst) {
			return false
		}
		parsed, ok := packet.ParseTCP(p)
		if !ok || parsed.DstPort != srcPort {
			return false
		}
		result = parsed
		return true
	})
	if !ok {
		return nil, packet.ParsedTCP{}, false
	}
	return h, result, true
}
