package scan

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/berkaydemir/netraven/internal/packet"
)

// pollInterval bounds each blocking read so the stop flag is rechecked
// promptly, per spec.md §4.5's "read the next frame with a short read
// deadline; if no frame arrives, recheck stop and continue".
const pollInterval = 200 * time.Millisecond

// runReceiver consumes conns until stop is observed true, classifying
// replies into results per spec.md §4.5, then returns once every reader
// goroutine it spawned has exited.
//
// Grounded on the teacher's internal/probe/icmp.go waitForResponse loop
// (parse the embedded original datagram out of an ICMP error to
// correlate), generalized from "traceroute Time-Exceeded" to the full
// port-scan classification table.
func runReceiver(conns *rawConns, st ScanSetting, results *scanResults, stop *StopFlag) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		receiveICMP(conns, st, results, stop)
	}()

	if conns.protoConn != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch st.ScanType {
			case TcpPingScan, TcpSynScan:
				receiveTCP(conns, st, results, stop)
			case UdpPingScan:
				receiveUDPDirect(conns, st, results, stop)
			}
		}()
	}

	wg.Wait()
}

func receiveICMP(conns *rawConns, st ScanSetting, results *scanResults, stop *StopFlag) {
	p4 := conns.icmpConn.IPv4PacketConn()
	_ = p4.SetControlMessage(ipv4.FlagTTL, true)

	buf := make([]byte, 1500)
	for !stop.Stopped() {
		conns.icmpConn.SetReadDeadline(time.Now().Add(pollInterval))
		n, cm, peer, err := p4.ReadFrom(buf)
		if err != nil {
			continue // timeout or transient error: recheck stop and retry
		}

		ttl := uint8(0)
		if cm != nil {
			ttl = uint8(cm.TTL)
		}
		classifyICMP(buf[:n], peerIP(peer), ttl, st, results)
	}
}

func classifyICMP(data []byte, src net.IP, ttl uint8, st ScanSetting, results *scanResults) {
	msg, err := icmp.ParseMessage(1, data)
	if err != nil {
		return
	}

	switch msg.Type {
	case ipv4.ICMPTypeEchoReply:
		if st.ScanType == IcmpPingScan {
			results.recordHost(src, ttl)
		}

	case ipv4.ICMPTypeDestinationUnreachable:
		body, ok := msg.Body.(*icmp.DstUnreach)
		if !ok {
			return
		}
		// DstUnreach.Data already starts at the original datagram (the
		// 4 unused header bytes are not part of it).
		embedded := body.Data
		proto, hlen, ok := packet.IPv4ProtocolAndHeaderLen(embedded)
		if !ok || len(embedded) < hlen {
			return
		}
		dstIP := net.IP(embedded[16:20])

		switch proto {
		case 6: // TCP
			tcp, ok := packet.ParseTCP(embedded[hlen:])
			if !ok || !planContainsPort(st.Destinations, dstIP, tcp.DstPort) {
				logrus.WithField("src", dstIP).Debug("scan: dropped unreachable for a port outside the plan")
				return
			}
			status := Filtered
			if msg.Code == 3 { // port unreachable
				status = Closed
			}
			results.recordPort(dstIP, tcp.DstPort, status)

		case 17: // UDP
			udp, ok := packet.ParseUDP(embedded[hlen:])
			if !ok || !planContainsPort(st.Destinations, dstIP, udp.DstPort) {
				return
			}
			status := Filtered
			if msg.Code == 3 {
				status = Closed
			}
			results.recordPort(dstIP, udp.DstPort, status)
		}
	}
}

func receiveTCP(conns *rawConns, st ScanSetting, results *scanResults, stop *StopFlag) {
	buf := make([]byte, 1500)
	for !stop.Stopped() {
		conns.protoConn.SetReadDeadline(time.Now().Add(pollInterval))
		n, peer, err := conns.protoConn.ReadFrom(buf)
		if err != nil {
			continue
		}

		tcp, ok := packet.ParseTCP(buf[:n])
		if !ok || tcp.DstPort != st.SrcPort {
			continue
		}
		src := peerIP(peer)
		if !planContainsPort(st.Destinations, src, tcp.SrcPort) {
			continue
		}

		switch {
		case tcp.Flags.Has(packet.FlagSYN | packet.FlagACK):
			logrus.WithField("src", src).WithField("port", tcp.SrcPort).Debug("scan: SYN-ACK observed")
			results.recordPort(src, tcp.SrcPort, Open)
		case tcp.Flags.Has(packet.FlagRST):
			results.recordPort(src, tcp.SrcPort, Closed)
		}
	}
}

func receiveUDPDirect(conns *rawConns, st ScanSetting, results *scanResults, stop *StopFlag) {
	buf := make([]byte, 1500)
	for !stop.Stopped() {
		conns.protoConn.SetReadDeadline(time.Now().Add(pollInterval))
		n, peer, err := conns.protoConn.ReadFrom(buf)
		if err != nil {
			continue
		}

		udp, ok := packet.ParseUDP(buf[:n])
		if !ok || udp.DstPort != st.SrcPort {
			continue
		}
		src := peerIP(peer)
		if !planContainsPort(st.Destinations, src, udp.SrcPort) {
			continue
		}
		// A direct UDP reply is rare but, per spec, treated as Open.
		results.recordPort(src, udp.SrcPort, Open)
	}
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP
	case *net.UDPAddr:
		return a.IP
	default:
		return nil
	}
}
