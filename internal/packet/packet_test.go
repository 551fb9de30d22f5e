package packet

import (
	"bytes"
	"net"
	"testing"
)

func TestChecksumRoundTrip(t *testing.T) {
	data := []byte{0x45, 0x00, 0x00, 0x3c, 0x1c, 0x46, 0x40, 0x00, 0x40, 0x06, 0x00, 0x00}
	sum := Checksum(data)
	data[10] = byte(sum >> 8)
	data[11] = byte(sum)
	if !ValidateChecksum(data) {
		t.Fatal("checksum did not validate after being written back into the buffer")
	}
}

func TestChecksumOddLength(t *testing.T) {
	// An odd-length buffer exercises the zero-padded trailing byte path.
	data := []byte{0x01, 0x02, 0x03}
	sum := Checksum(data)
	if sum == 0 {
		t.Error("Checksum of non-zero data should not be zero")
	}
}

func TestBuildTCPOptionOrderPreserved(t *testing.T) {
	seg := TCPSegment{
		Src:     net.ParseIP("10.0.0.1"),
		Dst:     net.ParseIP("10.0.0.2"),
		SrcPort: 53443,
		DstPort: 80,
		Seq:     1,
		Flags:   FlagSYN,
		Window:  65535,
		Options: []Option{
			{Kind: OptKindMSS, Data: []byte{0x05, 0xb4}},
			{Kind: OptKindSACKPerm},
			{Kind: OptKindTimestamp, Data: make([]byte, 8)},
			{Kind: OptKindNOP},
			{Kind: OptKindWScale, Data: []byte{0x07}},
		},
	}
	raw, err := BuildTCP(seg)
	if err != nil {
		t.Fatalf("BuildTCP: %v", err)
	}

	parsed, ok := ParseTCP(raw)
	if !ok {
		t.Fatal("ParseTCP rejected a packet BuildTCP produced")
	}
	want := []byte{OptKindMSS, OptKindSACKPerm, OptKindTimestamp, OptKindNOP, OptKindWScale}
	if !bytes.Equal(parsed.OptionOrder, want) {
		t.Errorf("OptionOrder = %v, want %v", parsed.OptionOrder, want)
	}
	if !parsed.Flags.Has(FlagSYN) {
		t.Error("parsed flags lost the SYN bit")
	}
	if parsed.Window != 65535 {
		t.Errorf("Window = %d, want 65535", parsed.Window)
	}
}

func TestBuildTCPHeaderLenMultipleOf4(t *testing.T) {
	seg := TCPSegment{
		Src: net.ParseIP("10.0.0.1"), Dst: net.ParseIP("10.0.0.2"),
		SrcPort: 1, DstPort: 2, Flags: FlagSYN,
		Options: []Option{{Kind: OptKindMSS, Data: []byte{0x05, 0xb4}}},
	}
	raw, err := BuildTCP(seg)
	if err != nil {
		t.Fatalf("BuildTCP: %v", err)
	}
	dataOffset := int(raw[12]>>4) * 4
	if dataOffset%4 != 0 {
		t.Errorf("data offset %d is not 4-byte aligned", dataOffset)
	}
	if len(raw) != dataOffset {
		t.Errorf("len(raw) = %d, want %d (no payload)", len(raw), dataOffset)
	}
}

func TestBuildUDPChecksumNonZero(t *testing.T) {
	raw := BuildUDP(net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.2"), 53443, 33434, []byte("probe"))
	if raw[6] == 0 && raw[7] == 0 {
		t.Error("UDP checksum field is zero")
	}
	parsed, ok := ParseUDP(raw)
	if !ok {
		t.Fatal("ParseUDP rejected a packet BuildUDP produced")
	}
	if parsed.SrcPort != 53443 || parsed.DstPort != 33434 {
		t.Errorf("ports = %d/%d, want 53443/33434", parsed.SrcPort, parsed.DstPort)
	}
	if string(parsed.Payload) != "probe" {
		t.Errorf("Payload = %q, want %q", parsed.Payload, "probe")
	}
}

func TestBuildICMPEchoRoundTrip(t *testing.T) {
	raw := BuildICMPEcho(ICMPEchoRequest, 0, 1234, 1, []byte("payload"))
	if !ValidateChecksum(raw) {
		t.Fatal("ICMP echo checksum does not validate")
	}
	parsed, ok := ParseICMP(raw)
	if !ok {
		t.Fatal("ParseICMP rejected a packet BuildICMPEcho produced")
	}
	if parsed.Type != ICMPEchoRequest || parsed.ID != 1234 || parsed.Seq != 1 {
		t.Errorf("parsed = %+v, want type=%d id=1234 seq=1", parsed, ICMPEchoRequest)
	}
}

func TestBuildICMPTimestampRoundTrip(t *testing.T) {
	raw := BuildICMPTimestamp(ICMPTimestampRequest, 0, 7, 1, 0, 0, 0)
	if !ValidateChecksum(raw) {
		t.Fatal("ICMP timestamp checksum does not validate")
	}
	if len(raw) != 20 {
		t.Errorf("len(raw) = %d, want 20", len(raw))
	}
}

func TestIPv4ProtocolAndHeaderLen(t *testing.T) {
	ipHeader := make([]byte, 20)
	ipHeader[0] = 0x45 // version 4, IHL 5 (20 bytes)
	ipHeader[9] = protoTCP
	proto, hlen, ok := IPv4ProtocolAndHeaderLen(ipHeader)
	if !ok || proto != protoTCP || hlen != 20 {
		t.Errorf("got (%d, %d, %v), want (%d, 20, true)", proto, hlen, ok, protoTCP)
	}
}
