package packet

import "encoding/binary"

// ICMPv4 message types used by the probe engine and the OS-fingerprint
// probe battery. Named the way the original scanner's os/result.rs names
// its probe variants (IcmpEcho, IcmpTimestamp, IcmpAddressMask,
// IcmpInformation, IcmpUnreachable) rather than after RFC 792's terse
// numbers, since each has a dedicated builder below.
const (
	ICMPEchoReply          = 0
	ICMPDestUnreachable    = 3
	ICMPEchoRequest        = 8
	ICMPTimeExceeded       = 11
	ICMPTimestampRequest   = 13
	ICMPTimestampReply     = 14
	ICMPInfoRequest        = 15
	ICMPInfoReply          = 16
	ICMPAddressMaskRequest = 17
	ICMPAddressMaskReply   = 18
)

// ICMPv6 message types. No code in this module sends or parses ICMPv6:
// traceroute and the scan receiver read ICMPv4 only, and the
// OS-fingerprint battery builds IPv4 headers only.
const (
	ICMPv6EchoRequest   = 128
	ICMPv6EchoReply     = 129
	ICMPv6DestUnreach   = 1
	ICMPv6TimeExceeded  = 3
)

// BuildICMPEcho builds an ICMP Echo Request/Reply message.
func BuildICMPEcho(icmpType, code byte, id, seq uint16, data []byte) []byte {
	buf := make([]byte, 8+len(data))
	buf[0] = icmpType
	buf[1] = code
	binary.BigEndian.PutUint16(buf[4:6], id)
	binary.BigEndian.PutUint16(buf[6:8], seq)
	copy(buf[8:], data)
	binary.BigEndian.PutUint16(buf[2:4], Checksum(buf))
	return buf
}

// BuildICMPTimestamp builds an ICMP Timestamp Request/Reply message (RFC
// 792). A request sets receive and transmit timestamps to zero; the
// fingerprint probe only ever sends requests.
func BuildICMPTimestamp(icmpType, code byte, id, seq uint16, originate, receive, transmit uint32) []byte {
	buf := make([]byte, 20)
	buf[0] = icmpType
	buf[1] = code
	binary.BigEndian.PutUint16(buf[4:6], id)
	binary.BigEndian.PutUint16(buf[6:8], seq)
	binary.BigEndian.PutUint32(buf[8:12], originate)
	binary.BigEndian.PutUint32(buf[12:16], receive)
	binary.BigEndian.PutUint32(buf[16:20], transmit)
	binary.BigEndian.PutUint16(buf[2:4], Checksum(buf))
	return buf
}

// BuildICMPAddressMask builds an ICMP Address Mask Request/Reply message.
func BuildICMPAddressMask(icmpType, code byte, id, seq uint16, mask uint32) []byte {
	buf := make([]byte, 12)
	buf[0] = icmpType
	buf[1] = code
	binary.BigEndian.PutUint16(buf[4:6], id)
	binary.BigEndian.PutUint16(buf[6:8], seq)
	binary.BigEndian.PutUint32(buf[8:12], mask)
	binary.BigEndian.PutUint16(buf[2:4], Checksum(buf))
	return buf
}

// BuildICMPInformation builds an ICMP Information Request/Reply message;
// the wire layout is identical to Echo, with type values 15/16.
func BuildICMPInformation(icmpType, code byte, id, seq uint16) []byte {
	return BuildICMPEcho(icmpType, code, id, seq, nil)
}

// ParsedICMP is a received ICMPv4 message decoded back into its common
// header fields, with the type-specific body left in Rest for the caller
// to interpret.
type ParsedICMP struct {
	Type, Code byte
	ID, Seq    uint16
	Rest       []byte
}

// ParseICMP decodes the 8-byte-common-header family of ICMPv4 messages
// (echo, timestamp, address mask, information). For Destination
// Unreachable and Time Exceeded, bytes 4-7 are unused and Rest starts
// directly at the original datagram; EmbeddedDatagram instead takes the
// body that still begins with those 4 unused bytes.
func ParseICMP(data []byte) (ParsedICMP, bool) {
	if len(data) < 8 {
		return ParsedICMP{}, false
	}
	return ParsedICMP{
		Type: data[0],
		Code: data[1],
		ID:   binary.BigEndian.Uint16(data[4:6]),
		Seq:  binary.BigEndian.Uint16(data[6:8]),
		Rest: data[8:],
	}, true
}

// EmbeddedDatagram extracts the original IPv4 header + leading payload
// bytes carried in a Destination Unreachable or Time Exceeded message body
// (the 4 bytes at offset 0 of that body are unused/rfc-reserved).
func EmbeddedDatagram(icmpBody []byte) []byte {
	if len(icmpBody) < 4 {
		return nil
	}
	return icmpBody[4:]
}

// IPv4ProtocolAndHeaderLen reads the protocol number and header length (in
// bytes) from a raw IPv4 header, as found at the start of an ICMP error's
// embedded datagram.
func IPv4ProtocolAndHeaderLen(ipHeader []byte) (proto byte, headerLen int, ok bool) {
	if len(ipHeader) < 20 {
		return 0, 0, false
	}
	headerLen = int(ipHeader[0]&0x0f) * 4
	if headerLen < 20 || len(ipHeader) < headerLen {
		return 0, 0, false
	}
	return ipHeader[9], headerLen, true
}
