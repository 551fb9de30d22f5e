package packet

import (
	"encoding/binary"
	"net"
)

// protoTCP and protoUDP are the IP protocol numbers used in the
// pseudo-header checksum, matching the constants the original scanner
// hardcodes in its own pseudo-header builders.
const (
	protoTCP = 6
	protoUDP = 17
)

// pseudoHeaderV4 builds the IPv4 pseudo-header prepended to a TCP or UDP
// segment before computing its checksum (RFC 793 §3.1, RFC 768).
func pseudoHeaderV4(src, dst net.IP, proto byte, length int) []byte {
	h := make([]byte, 12)
	copy(h[0:4], src.To4())
	copy(h[4:8], dst.To4())
	h[8] = 0
	h[9] = proto
	binary.BigEndian.PutUint16(h[10:12], uint16(length))
	return h
}

// pseudoHeaderV6 builds the IPv6 pseudo-header (RFC 8200 §8.1).
func pseudoHeaderV6(src, dst net.IP, proto byte, length int) []byte {
	h := make([]byte, 40)
	copy(h[0:16], src.To16())
	copy(h[16:32], dst.To16())
	binary.BigEndian.PutUint32(h[32:36], uint32(length))
	h[39] = proto
	return h
}

func isV6(ip net.IP) bool {
	return ip.To4() == nil
}
