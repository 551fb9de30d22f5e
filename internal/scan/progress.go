package scan

import "net"

// ProgressEvent is published once per submitted probe; Port is 0 for
// host-only probes (ICMP ping, TCP ping without a port sweep).
type ProgressEvent struct {
	IP   net.IP
	Port uint16
}

// progressPublisher is a single Sender shared by possibly many goroutines.
// Go channels are already safe for concurrent sends, so it holds no mutex;
// the closed flag only makes a repeated close a no-op and is not guarded
// against concurrent close calls.
type progressPublisher struct {
	ch     chan ProgressEvent
	closed bool
}

func newProgressPublisher(buf int) *progressPublisher {
	return &progressPublisher{ch: make(chan ProgressEvent, buf)}
}

// publish sends ev, dropping it instead of blocking forever if the
// consumer has stopped reading and the buffer is full. Progress is
// advisory; it must never slow down or deadlock the scan itself.
func (p *progressPublisher) publish(ev ProgressEvent) {
	select {
	case p.ch <- ev:
	default:
	}
}

// Receiver exposes the read-only side to callers.
func (p *progressPublisher) Receiver() <-chan ProgressEvent { return p.ch }

func (p *progressPublisher) close() {
	if p.closed {
		return
	}
	p.closed = true
	close(p.ch)
}
