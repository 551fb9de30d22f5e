package packet

import (
	"encoding/binary"
	"net"
)

// BuildUDP renders a complete UDP datagram with a valid checksum. src/dst
// are used only for the pseudo-header; callers that don't need the
// checksum verified on receipt (IPv4 allows a zero UDP checksum) may pass
// nil payload addresses, but the scan sender always has real ones
// available and always computes it.
func BuildUDP(src, dst net.IP, srcPort, dstPort uint16, payload []byte) []byte {
	length := 8 + len(payload)
	buf := make([]byte, length)
	binary.BigEndian.PutUint16(buf[0:2], srcPort)
	binary.BigEndian.PutUint16(buf[2:4], dstPort)
	binary.BigEndian.PutUint16(buf[4:6], uint16(length))
	binary.BigEndian.PutUint16(buf[6:8], 0)
	copy(buf[8:], payload)

	var pseudo []byte
	if isV6(dst) {
		pseudo = pseudoHeaderV6(src, dst, protoUDP, length)
	} else {
		pseudo = pseudoHeaderV4(src, dst, protoUDP, length)
	}
	sum := Checksum(append(append([]byte{}, pseudo...), buf...))
	if sum == 0 {
		sum = 0xffff // a computed zero is sent as all-ones, per RFC 768
	}
	binary.BigEndian.PutUint16(buf[6:8], sum)
	return buf
}

// ParsedUDP is a received UDP datagram decoded back into its fields.
type ParsedUDP struct {
	SrcPort, DstPort uint16
	Payload          []byte
}

// ParseUDP decodes a raw UDP datagram.
func ParseUDP(data []byte) (ParsedUDP, bool) {
	if len(data) < 8 {
		return ParsedUDP{}, false
	}
	return ParsedUDP{
		SrcPort: binary.BigEndian.Uint16(data[0:2]),
		DstPort: binary.BigEndian.Uint16(data[2:4]),
		Payload: data[8:],
	}, true
}
