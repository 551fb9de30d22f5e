package packet

import (
	"encoding/binary"
	"fmt"
	"net"
)

// TCPFlags is the bitmask occupying the TCP flags byte (RFC 793's six
// control bits plus RFC 3168's ECN CWR/ECE, needed by the OS-fingerprint
// battery's TcpEcnProbe).
type TCPFlags uint8

const (
	FlagFIN TCPFlags = 1 << iota
	FlagSYN
	FlagRST
	FlagPSH
	FlagACK
	FlagURG
	FlagECE
	FlagCWR
)

// Option kinds used by the OS-fingerprint TCP header probe, which cares
// about both the presence and the exact ordering of options (grounded on
// TcpHeaderResult.tcp_option_order in original_source/libs/e-libscanner/
// src/os/result.rs).
const (
	OptKindEnd       = 0
	OptKindNOP       = 1
	OptKindMSS       = 2
	OptKindWScale    = 3
	OptKindSACKPerm  = 4
	OptKindTimestamp = 8
)

// Option is a single TCP option to append, in the order given, to a built
// segment. Data excludes the kind and length bytes.
type Option struct {
	Kind byte
	Data []byte
}

// TCPSegment describes the fields needed to build a TCP segment. Src/Dst
// are used only for the pseudo-header checksum, not written into the
// segment itself.
type TCPSegment struct {
	Src, Dst       net.IP
	SrcPort        uint16
	DstPort        uint16
	Seq, Ack       uint32
	Flags          TCPFlags
	Window         uint16
	Options        []Option
	Payload        []byte
}

// BuildTCP renders seg into a complete TCP segment with a valid checksum.
// Options are padded with trailing NOPs to a 4-byte boundary
// as required by RFC 793 §3.1.
func BuildTCP(seg TCPSegment) ([]byte, error) {
	optBytes, err := encodeOptions(seg.Options)
	if err != nil {
		return nil, err
	}

	headerLen := 20 + len(optBytes)
	if headerLen%4 != 0 {
		return nil, fmt.Errorf("packet: TCP header length %d not a multiple of 4", headerLen)
	}
	dataOffset := headerLen / 4

	buf := make([]byte, headerLen+len(seg.Payload))
	binary.BigEndian.PutUint16(buf[0:2], seg.SrcPort)
	binary.BigEndian.PutUint16(buf[2:4], seg.DstPort)
	binary.BigEndian.PutUint32(buf[4:8], seg.Seq)
	binary.BigEndian.PutUint32(buf[8:12], seg.Ack)
	buf[12] = byte(dataOffset<<4) & 0xf0
	buf[13] = byte(seg.Flags)
	binary.BigEndian.PutUint16(buf[14:16], seg.Window)
	// buf[16:18] checksum, filled below
	binary.BigEndian.PutUint16(buf[18:20], 0)
	copy(buf[20:headerLen], optBytes)
	copy(buf[headerLen:], seg.Payload)

	var pseudo []byte
	if isV6(seg.Dst) {
		pseudo = pseudoHeaderV6(seg.Src, seg.Dst, protoTCP, len(buf))
	} else {
		pseudo = pseudoHeaderV4(seg.Src, seg.Dst, protoTCP, len(buf))
	}
	sum := Checksum(append(append([]byte{}, pseudo...), buf...))
	binary.BigEndian.PutUint16(buf[16:18], sum)

	return buf, nil
}

func encodeOptions(opts []Option) ([]byte, error) {
	if len(opts) == 0 {
		return nil, nil
	}
	var out []byte
	for _, o := range opts {
		switch o.Kind {
		case OptKindNOP, OptKindEnd:
			out = append(out, o.Kind)
		default:
			if len(o.Data) > 253 {
				return nil, fmt.Errorf("packet: TCP option kind %d too long", o.Kind)
			}
			out = append(out, o.Kind, byte(len(o.Data)+2))
			out = append(out, o.Data...)
		}
	}
	for len(out)%4 != 0 {
		out = append(out, OptKindNOP)
	}
	return out, nil
}

// ParsedTCP is a received TCP segment decoded back into its fields,
// preserving the raw option kind order for fingerprint comparison.
type ParsedTCP struct {
	SrcPort, DstPort uint16
	Seq, Ack         uint32
	Flags            TCPFlags
	Window           uint16
	OptionOrder      []byte
	Payload          []byte
}

// ParseTCP decodes a raw TCP segment. It does not verify the checksum;
// callers that need validation should slice out the segment and call
// ValidateChecksum themselves with the matching pseudo-header prepended.
func ParseTCP(data []byte) (ParsedTCP, bool) {
	if len(data) < 20 {
		return ParsedTCP{}, false
	}
	dataOffset := int(data[12]>>4) * 4
	if dataOffset < 20 || dataOffset > len(data) {
		return ParsedTCP{}, false
	}

	p := ParsedTCP{
		SrcPort: binary.BigEndian.Uint16(data[0:2]),
		DstPort: binary.BigEndian.Uint16(data[2:4]),
		Seq:     binary.BigEndian.Uint32(data[4:8]),
		Ack:     binary.BigEndian.Uint32(data[8:12]),
		Flags:   TCPFlags(data[13]),
		Window:  binary.BigEndian.Uint16(data[14:16]),
		Payload: data[dataOffset:],
	}

	for i := 20; i < dataOffset; {
		kind := data[i]
		if kind == OptKindEnd {
			break
		}
		p.OptionOrder = append(p.OptionOrder, kind)
		if kind == OptKindNOP {
			i++
			continue
		}
		if i+1 >= dataOffset {
			break
		}
		length := int(data[i+1])
		if length < 2 || i+length > dataOffset {
			break
		}
		i += length
	}

	return p, true
}

// Has reports whether flags contains every bit set in want.
func (f TCPFlags) Has(want TCPFlags) bool {
	return f&want == want
}
