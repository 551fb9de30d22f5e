package iface

import (
	"net"
	"testing"
)

func TestLocalIP(t *testing.T) {
	ip, err := LocalIP()
	if err != nil {
		t.Skipf("no outbound route available in this environment: %v", err)
	}
	if ip == nil {
		t.Fatal("LocalIP returned nil IP with no error")
	}
}

func TestInterfaceForUnknownAddr(t *testing.T) {
	_, err := InterfaceFor(net.ParseIP("203.0.113.250"))
	if err != ErrNotFound {
		t.Errorf("InterfaceFor(unassigned addr) error = %v, want ErrNotFound", err)
	}
}
