// Package tracert runs a hop-by-hop traceroute exposed as an iterator
// rather than a single all-hops-at-once call, grounded on
// original_source/libs/e-libscanner/src/utils/traceroute.rs and the
// underlying sys-utils Traceroute iterator it wraps.
package tracert

import (
	"math/rand"
	"net"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/berkaydemir/netraven/internal/iface"
	"github.com/berkaydemir/netraven/internal/packet"
)

// udpPayload is the fixed marker traceroute's UDP probes carry, mirroring
// the scan package's own udpProbeMarker convention.
var udpPayload = []byte("netraven-traceroute")

// Tracer is the iterator spec.md §4.9 describes: each Next() call probes
// one TTL level and advances state, rather than returning every hop from
// a single blocking call.
type Tracer struct {
	cfg  Config
	dst  net.IP
	conn *conns

	ttl  int
	seq  uint16
	done bool
}

// New builds a Tracer toward dst. The underlying sockets are opened
// eagerly so the first Next() call carries no extra setup latency.
func New(dst net.IP, cfg Config) (*Tracer, error) {
	cfg = cfg.withDefaults()
	if cfg.SrcIP == nil {
		srcIP, err := iface.LocalIP()
		if err != nil {
			return nil, err
		}
		cfg.SrcIP = srcIP
	}

	c, err := openConns(cfg.Protocol)
	if err != nil {
		return nil, err
	}
	return &Tracer{cfg: cfg, dst: dst, conn: c, ttl: cfg.FirstTTL}, nil
}

// Close releases the Tracer's sockets. Safe to call once Next has started
// returning false, or to abandon a run early.
func (t *Tracer) Close() error {
	t.conn.close()
	return nil
}

// Next probes the current TTL with NumberOfQueries probes and returns the
// aggregated Hop. It returns ok=false once either a reply from dst has
// been observed or TTL has exceeded MaxHops, per spec.md §4.9.
func (t *Tracer) Next() (Hop, bool) {
	if t.done || t.ttl > t.cfg.MaxHops {
		return Hop{}, false
	}

	ttl := t.ttl
	t.ttl++

	raw := make([]queryResult, 0, t.cfg.NumberOfQueries)
	for i := 0; i < t.cfg.NumberOfQueries; i++ {
		raw = append(raw, t.query(ttl))
	}

	hop := aggregateHop(uint8(ttl), raw)
	if hop.ReachedTarget(t.dst) {
		t.done = true
	}
	return hop, true
}

// query runs one probe at ttl: send, then wait up to cfg.Timeout for any
// qualifying ICMP reply, recording its source and RTT. A timeout yields
// an empty-Addr queryResult, the "unresponsive" marker aggregateHop drops.
func (t *Tracer) query(ttl int) queryResult {
	start := time.Now()
	if err := t.send(ttl); err != nil {
		return queryResult{}
	}
	return t.recv(start)
}

func (t *Tracer) send(ttl int) error {
	port := t.cfg.BasePort + t.seq
	t.seq++

	switch t.cfg.Protocol {
	case ProtoTCP:
		if err := setTTL(t.conn.tcp, ttl); err != nil {
			return err
		}
		seg := packet.TCPSegment{
			Src:     t.cfg.SrcIP,
			Dst:     t.dst,
			SrcPort: t.conn.id,
			DstPort: t.cfg.BasePort, // TCP uses a fixed port per spec.md §4.9
			Seq:     rand.Uint32(),
			Flags:   packet.FlagSYN,
			Window:  65535,
		}
		raw, err := packet.BuildTCP(seg)
		if err != nil {
			return err
		}
		_, err = t.conn.tcp.WriteTo(raw, &net.IPAddr{IP: t.dst})
		return err

	case ProtoICMP:
		if err := setICMPTTL(t.conn.icmp, ttl); err != nil {
			return err
		}
		msg := packet.BuildICMPEcho(packet.ICMPEchoRequest, 0, t.conn.id, t.seq, nil)
		_, err := t.conn.icmp.WriteTo(msg, &net.IPAddr{IP: t.dst})
		return err

	default: // ProtoUDP
		if err := setTTL(t.conn.udp, ttl); err != nil {
			return err
		}
		raw := packet.BuildUDP(t.cfg.SrcIP, t.dst, t.conn.id, port, udpPayload)
		_, err := t.conn.udp.WriteTo(raw, &net.IPAddr{IP: t.dst})
		return err
	}
}

// recv waits up to cfg.Timeout for any ICMP TimeExceeded, EchoReply, or
// DestinationUnreachable, regardless of which router sent it — spec.md
// §4.9's "any ICMP... sourced from any router". Since one query runs at a
// time, there is no concurrent probe whose reply could be mistaken for
// this one.
func (t *Tracer) recv(start time.Time) queryResult {
	deadline := start.Add(t.cfg.Timeout)
	buf := make([]byte, 1500)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return queryResult{}
		}
		t.conn.icmp.SetReadDeadline(time.Now().Add(remaining))

		n, peer, err := t.conn.icmp.ReadFrom(buf)
		if err != nil {
			return queryResult{} // deadline exceeded
		}

		msg, err := icmp.ParseMessage(1, buf[:n])
		if err != nil {
			continue
		}

		switch msg.Type {
		case ipv4.ICMPTypeTimeExceeded, ipv4.ICMPTypeEchoReply, ipv4.ICMPTypeDestinationUnreachable:
			addr, ok := peer.(*net.IPAddr)
			if !ok {
				continue
			}
			return queryResult{RTT: time.Since(start), Addr: addr.IP.String()}
		}
	}
}
