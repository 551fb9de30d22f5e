package scan

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestScanResultsDedupHosts(t *testing.T) {
	r := newScanResults()
	ip := net.ParseIP("10.0.0.1")
	r.recordHost(ip, 64)
	r.recordHost(ip, 50) // second reply, different TTL: must not overwrite

	result := r.drain()
	if len(result.Hosts) != 1 {
		t.Fatalf("len(Hosts) = %d, want 1", len(result.Hosts))
	}
	if result.Hosts[0].TTL != 64 {
		t.Errorf("TTL = %d, want 64 (first reply wins)", result.Hosts[0].TTL)
	}
}

func TestScanResultsDedupPorts(t *testing.T) {
	r := newScanResults()
	ip := net.ParseIP("10.0.0.1")
	r.recordPort(ip, 80, Open)
	r.recordPort(ip, 80, Closed) // must not overwrite the first observation

	result := r.drain()
	ports := result.Ports[ip.String()]
	if len(ports) != 1 {
		t.Fatalf("len(ports) = %d, want 1", len(ports))
	}
	if ports[0].Status != Open {
		t.Errorf("Status = %v, want Open (first reply wins)", ports[0].Status)
	}
}

func TestPlanContainsPortRejectsSpurious(t *testing.T) {
	dests := []Destination{{IP: net.ParseIP("10.0.0.1"), Ports: []uint16{80, 443}}}
	if !planContainsPort(dests, net.ParseIP("10.0.0.1"), 80) {
		t.Error("expected 10.0.0.1:80 to be in the plan")
	}
	if planContainsPort(dests, net.ParseIP("10.0.0.1"), 22) {
		t.Error("10.0.0.1:22 was never in the plan")
	}
	if planContainsPort(dests, net.ParseIP("10.0.0.2"), 80) {
		t.Error("10.0.0.2 was never in the plan")
	}
}

// TestConnectScanOpenOnlyInvariant exercises boundary scenario 2 from
// spec.md §8: every port recorded by TcpConnectScan has status Open.
func TestConnectScanOpenOnlyInvariant(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("could not open a local listener: %v", err)
	}
	defer ln.Close()

	openPort := uint16(ln.Addr().(*net.TCPAddr).Port)

	setting, err := New(ScanSetting{
		Destinations: []Destination{{
			IP:    net.ParseIP("127.0.0.1"),
			Ports: []uint16{openPort, openPort + 1}, // second port very likely closed
		}},
		ScanType: TcpConnectScan,
		WaitTime: 10 * time.Millisecond,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var events []ProgressEvent
	done := make(chan struct{})
	go func() {
		for ev := range setting.Progress() {
			events = append(events, ev)
		}
		close(done)
	}()

	result := setting.Scan(context.Background(), nil)
	<-done

	if len(events) != 2 {
		t.Errorf("progress events = %d, want 2", len(events))
	}

	for _, p := range result.Ports["127.0.0.1"] {
		if p.Status != Open {
			t.Errorf("connect-scan recorded status %v, want Open-only", p.Status)
		}
	}
	found := false
	for _, p := range result.Ports["127.0.0.1"] {
		if p.Port == openPort {
			found = true
		}
	}
	if !found {
		t.Error("expected the listening port to be recorded as Open")
	}
	if result.Status != Done {
		t.Errorf("Status = %v, want Done", result.Status)
	}
}

func TestValidateRejectsIPv6ForRawScan(t *testing.T) {
	_, err := New(ScanSetting{
		Destinations: []Destination{{IP: net.ParseIP("2001:db8::1")}},
		ScanType:     TcpSynScan,
	})
	if err != ErrIPv6RawUnsupported {
		t.Errorf("err = %v, want ErrIPv6RawUnsupported", err)
	}
}

func TestValidateAllowsIPv6ForConnectScan(t *testing.T) {
	_, err := New(ScanSetting{
		Destinations: []Destination{{IP: net.ParseIP("2001:db8::1"), Ports: []uint16{80}}},
		ScanType:     TcpConnectScan,
	})
	if err != nil {
		t.Errorf("New: %v, want no error for TcpConnectScan over IPv6", err)
	}
}

func TestPortStatusString(t *testing.T) {
	cases := map[PortStatus]string{Open: "open", Closed: "closed", Filtered: "filtered"}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", status, got, want)
		}
	}
}
