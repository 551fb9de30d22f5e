package target

import (
	"context"
	"net"
	"strings"
	"testing"
)

func TestExpandLiteral(t *testing.T) {
	ips, err := Expand(context.Background(), []string{"192.168.1.1"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(ips) != 1 || !ips[0].Equal(net.ParseIP("192.168.1.1")) {
		t.Fatalf("got %v, want [192.168.1.1]", ips)
	}
}

func TestExpandLiteralIdempotent(t *testing.T) {
	for _, lit := range []string{"10.0.0.5", "::1", "2001:db8::1"} {
		ips, err := Expand(context.Background(), []string{lit})
		if err != nil {
			t.Fatalf("Expand(%q): %v", lit, err)
		}
		if len(ips) != 1 || !ips[0].Equal(net.ParseIP(lit)) {
			t.Errorf("Expand(%q) = %v, want [%s]", lit, ips, lit)
		}
	}
}

func TestExpandCIDR(t *testing.T) {
	cases := []struct {
		cidr string
		want int
	}{
		{"192.168.1.0/30", 2},  // .1, .2
		{"192.168.1.0/24", 254},
		{"10.0.0.0/31", 2}, // no network/broadcast exclusion at /31
	}
	for _, c := range cases {
		ips, err := Expand(context.Background(), []string{c.cidr})
		if err != nil {
			t.Fatalf("Expand(%q): %v", c.cidr, err)
		}
		if len(ips) != c.want {
			t.Errorf("Expand(%q) = %d addrs, want %d", c.cidr, len(ips), c.want)
		}
	}
}

func TestExpandCIDRExcludesNetworkAndBroadcast(t *testing.T) {
	ips, err := Expand(context.Background(), []string{"192.168.1.0/30"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	for _, ip := range ips {
		if ip.Equal(net.ParseIP("192.168.1.0")) || ip.Equal(net.ParseIP("192.168.1.3")) {
			t.Errorf("unexpected network/broadcast address in result: %v", ip)
		}
	}
}

func TestExpandDottedRangeCartesianProduct(t *testing.T) {
	// The formal grammar is four dot-separated octets, each a single value
	// or an inclusive lo-hi range; exercise it with a range on the last
	// two octets, matching the spec's intended 4-entry Cartesian product.
	ips, err := Expand(context.Background(), []string{"10.0.1-2.1-2"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(ips) != 4 {
		t.Fatalf("got %d addresses, want 4: %v", len(ips), ips)
	}
}

func TestExpandDottedRangeFourOctets(t *testing.T) {
	ips, err := Expand(context.Background(), []string{"192.168.8-9.10-12"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// a:192 (1) x b:168 (1) x c:8-9 (2) x d:10-12 (3) = 6
	if len(ips) != 6 {
		t.Fatalf("got %d addresses, want 6: %v", len(ips), ips)
	}
}

func TestExpandInvalidTokenNamesOffender(t *testing.T) {
	_, err := Expand(context.Background(), []string{"192.168.1.1", "not-a-target!!"})
	if err == nil {
		t.Fatal("expected an error for the malformed token")
	}
	if !strings.Contains(err.Error(), "not-a-target!!") {
		t.Errorf("error %q does not name the offending token", err)
	}
}

func TestExpandPortsSingle(t *testing.T) {
	ports, err := ExpandPorts([]string{"80", "443"})
	if err != nil {
		t.Fatalf("ExpandPorts: %v", err)
	}
	if len(ports) != 2 || ports[0] != 80 || ports[1] != 443 {
		t.Fatalf("got %v", ports)
	}
}

func TestExpandPortsHalfOpenRange(t *testing.T) {
	ports, err := ExpandPorts([]string{"1-3"})
	if err != nil {
		t.Fatalf("ExpandPorts: %v", err)
	}
	if len(ports) != 2 || ports[0] != 1 || ports[1] != 2 {
		t.Fatalf("got %v, want [1 2] (half-open range)", ports)
	}
}

func TestExpandPortsDuplicatesPreserved(t *testing.T) {
	ports, err := ExpandPorts([]string{"80", "80"})
	if err != nil {
		t.Fatalf("ExpandPorts: %v", err)
	}
	if len(ports) != 2 {
		t.Fatalf("got %v, want two duplicate entries preserved", ports)
	}
}
