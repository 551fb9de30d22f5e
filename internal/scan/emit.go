package scan

import (
	"fmt"
	"math/rand"
	"net"

	"github.com/berkaydemir/netraven/internal/packet"
)

// udpProbeMarker is the fixed payload the receiver recognizes as one of
// our own UDP probes, per spec.md §4.3 ("payload is a fixed marker used by
// the receiver to recognize own probes").
var udpProbeMarker = []byte("netraven-probe")

// emitProbe builds and writes exactly one wire packet for (dst, port)
// according to st.ScanType. Send errors are returned to the caller, which
// per spec swallows them silently and still publishes a progress event.
func emitProbe(conns *rawConns, st ScanSetting, dst net.IP, port uint16) error {
	switch st.ScanType {
	case IcmpPingScan:
		return emitICMPEcho(conns, st, dst)
	case TcpPingScan, TcpSynScan:
		return emitTCPSYN(conns, st, dst, port)
	case UdpPingScan:
		return emitUDP(conns, st, dst, port)
	default:
		return fmt.Errorf("scan: %s does not emit raw packets", st.ScanType)
	}
}

func emitICMPEcho(conns *rawConns, st ScanSetting, dst net.IP) error {
	msg := packet.BuildICMPEcho(packet.ICMPEchoRequest, 0, conns.id, 0, nil)
	_, err := conns.icmpConn.WriteTo(msg, &net.IPAddr{IP: dst})
	return err
}

func emitTCPSYN(conns *rawConns, st ScanSetting, dst net.IP, port uint16) error {
	seg := packet.TCPSegment{
		Src:     st.SrcIP,
		Dst:     dst,
		SrcPort: st.SrcPort,
		DstPort: port,
		Seq:     rand.Uint32(),
		Flags:   packet.FlagSYN,
		Window:  65535,
		Options: []packet.Option{
			{Kind: packet.OptKindMSS, Data: []byte{0x05, 0xb4}}, // 1460
		},
	}
	raw, err := packet.BuildTCP(seg)
	if err != nil {
		return err
	}
	_, err = conns.protoConn.WriteTo(raw, &net.IPAddr{IP: dst})
	return err
}

func emitUDP(conns *rawConns, st ScanSetting, dst net.IP, port uint16) error {
	raw := packet.BuildUDP(st.SrcIP, dst, st.SrcPort, port, udpProbeMarker)
	_, err := conns.protoConn.WriteTo(raw, &net.IPAddr{IP: dst})
	return err
}
