package osfp

import (
	"testing"

	"golang.org/x/net/ipv4"

	"github.com/berkaydemir/netraven/internal/packet"
)

// TestTcpRstAckOnlyOnRst exercises boundary scenario 6 from spec.md §8: a
// closed TCP port answering with RST must set RstAckResponse, and the
// same reply shape from an open port's SYN+ACK must not.
func TestTcpRstAckOnlyOnRst(t *testing.T) {
	h := &ipv4.Header{ID: 1234, TTL: 64}

	rst := packet.ParsedTCP{Flags: packet.FlagRST | packet.FlagACK, Payload: nil}
	result := classifyTcpRstAck(h, rst)
	if result == nil || !result.RstAckResponse {
		t.Fatal("expected RstAckResponse = true for a RST reply")
	}
	if result.IPID != 1234 || result.IPTTL != 64 {
		t.Errorf("IPID/IPTTL not carried through: got %+v", result)
	}

	synAck := packet.ParsedTCP{Flags: packet.FlagSYN | packet.FlagACK}
	if got := classifyTcpRstAck(h, synAck); got != nil {
		t.Errorf("expected nil RstAckResult for a SYN+ACK reply from an open port, got %+v", got)
	}
}

func TestTcpSynAckOnlyOnSynAck(t *testing.T) {
	h := &ipv4.Header{ID: 7, TTL: 55, Flags: ipv4.DontFragment}

	synAck := packet.ParsedTCP{Flags: packet.FlagSYN | packet.FlagACK}
	result := classifyTcpSynAck(h, synAck)
	if result == nil || !result.SynAckResponse {
		t.Fatal("expected SynAckResponse = true for a SYN+ACK reply")
	}
	if !result.IPDF {
		t.Error("expected IPDF = true when the reply's DontFragment flag is set")
	}

	rst := packet.ParsedTCP{Flags: packet.FlagRST}
	if got := classifyTcpSynAck(h, rst); got != nil {
		t.Errorf("expected nil for a RST reply, got %+v", got)
	}
}

func TestTcpEcnRequiresEceBit(t *testing.T) {
	h := &ipv4.Header{ID: 1, TTL: 64}

	withEce := packet.ParsedTCP{Flags: packet.FlagSYN | packet.FlagACK | packet.FlagECE}
	if got := classifyTcpEcn(h, withEce); got == nil || !got.SynAckEceResponse {
		t.Fatal("expected SynAckEceResponse = true when ECE is echoed back")
	}

	withoutEce := packet.ParsedTCP{Flags: packet.FlagSYN | packet.FlagACK}
	if got := classifyTcpEcn(h, withoutEce); got != nil {
		t.Errorf("expected nil when the peer ignored ECN, got %+v", got)
	}
}

func TestFingerprintOptionsOrderIsMssSackTimestampNopWscale(t *testing.T) {
	opts := fingerprintOptions()
	want := []byte{packet.OptKindMSS, packet.OptKindSACKPerm, packet.OptKindTimestamp, packet.OptKindNOP, packet.OptKindWScale}
	if len(opts) != len(want) {
		t.Fatalf("len(opts) = %d, want %d", len(opts), len(want))
	}
	for i, o := range opts {
		if o.Kind != want[i] {
			t.Errorf("opts[%d].Kind = %d, want %d", i, o.Kind, want[i])
		}
	}
}

func TestAllProbeTypesOrderMatchesSpec(t *testing.T) {
	if len(AllProbeTypes) != 9 {
		t.Fatalf("len(AllProbeTypes) = %d, want 9", len(AllProbeTypes))
	}
	if AllProbeTypes[0] != IcmpEchoProbe || AllProbeTypes[len(AllProbeTypes)-1] != TcpHeaderProbe {
		t.Errorf("AllProbeTypes must start with IcmpEchoProbe and end with TcpHeaderProbe, got %v", AllProbeTypes)
	}
}
