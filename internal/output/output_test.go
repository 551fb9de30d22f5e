package output

import (
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/berkaydemir/netraven/internal/scan"
)

func sampleResult() scan.ScanResult {
	ip := net.ParseIP("192.168.1.10")
	return scan.ScanResult{
		Status:  scan.Done,
		Elapsed: 250 * time.Millisecond,
		Hosts:   []scan.HostInfo{{IP: ip, TTL: 64}},
		Ports: map[string][]scan.PortInfo{
			ip.String(): {
				{Port: 22, Status: scan.Open, Service: "ssh"},
				{Port: 23, Status: scan.Closed, Service: "telnet"},
			},
		},
	}
}

func TestJSONFormatterOmitsNonOpenByDefault(t *testing.T) {
	f := NewJSONFormatter(DefaultConfig())
	data, err := f.Format(sampleResult())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Hosts) != 1 {
		t.Fatalf("got %d hosts, want 1", len(out.Hosts))
	}
	if len(out.Hosts[0].Ports) != 1 || out.Hosts[0].Ports[0].Port != 22 {
		t.Fatalf("expected only port 22 (open), got %+v", out.Hosts[0].Ports)
	}
}

func TestJSONFormatterShowClosedIncludesAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShowClosed = true
	f := NewJSONFormatter(cfg)
	data, _ := f.Format(sampleResult())

	var out JSONOutput
	json.Unmarshal(data, &out)
	if len(out.Hosts[0].Ports) != 2 {
		t.Fatalf("got %d ports, want 2 with ShowClosed", len(out.Hosts[0].Ports))
	}
}

func TestTableFormatterRendersHostAndOpenPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Colors = false
	f := NewTableFormatter(cfg)
	data, err := f.Format(sampleResult())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "192.168.1.10") {
		t.Fatalf("expected host IP in output, got:\n%s", out)
	}
	if !strings.Contains(out, "ssh") {
		t.Fatalf("expected open port's service name in output, got:\n%s", out)
	}
	if strings.Contains(out, "telnet") {
		t.Fatalf("closed port should be hidden by default, got:\n%s", out)
	}
}
