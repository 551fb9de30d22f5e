package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigHasWorkingDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Defaults.ScanType != "tcp_connect" {
		t.Fatalf("ScanType = %q, want tcp_connect", cfg.Defaults.ScanType)
	}
	if cfg.Defaults.HostsConcurrency == 0 || cfg.Defaults.PortsConcurrency == 0 {
		t.Fatal("expected non-zero concurrency defaults")
	}
	if _, ok := cfg.PortLists["top10"]; !ok {
		t.Fatal("expected a built-in top10 port list preset")
	}
}

func TestResolveTargetFallsBackToInput(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ResolveTarget("localhost"); got != "127.0.0.1" {
		t.Fatalf("ResolveTarget(localhost) = %q, want 127.0.0.1", got)
	}
	if got := cfg.ResolveTarget("10.0.0.5"); got != "10.0.0.5" {
		t.Fatalf("ResolveTarget on a non-alias should echo input, got %q", got)
	}
}

func TestResolvePortsUnknownPreset(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := cfg.ResolvePorts("does-not-exist"); err == nil {
		t.Fatal("expected an error for an unknown port list preset")
	}
}

func TestSaveToAndLoadFromRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Defaults.ScanType = "tcp_syn"
	cfg.Targets["example"] = "example.com"

	path := filepath.Join(t.TempDir(), "netraven.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Defaults.ScanType != "tcp_syn" {
		t.Fatalf("ScanType after round trip = %q, want tcp_syn", loaded.Defaults.ScanType)
	}
	if loaded.Targets["example"] != "example.com" {
		t.Fatalf("Targets[example] after round trip = %q", loaded.Targets["example"])
	}
}
