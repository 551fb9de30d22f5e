package tracert

import (
	"net"
	"testing"
	"time"
)

func TestAggregateHopDedupesByAddressKeepsMaxRTT(t *testing.T) {
	raw := []queryResult{
		{RTT: 10 * time.Millisecond, Addr: "10.0.0.1"},
		{RTT: 25 * time.Millisecond, Addr: "10.0.0.1"},
		{RTT: 15 * time.Millisecond, Addr: "10.0.0.2"},
	}
	hop := aggregateHop(3, raw)

	if hop.TTL != 3 {
		t.Fatalf("TTL = %d, want 3", hop.TTL)
	}
	if len(hop.Queries) != 2 {
		t.Fatalf("got %d distinct responders, want 2: %+v", len(hop.Queries), hop.Queries)
	}
	for _, q := range hop.Queries {
		if q.Addr[0] == "10.0.0.1" && q.RTT != 25*time.Millisecond {
			t.Errorf("10.0.0.1 RTT = %v, want 25ms (the max)", q.RTT)
		}
	}
}

func TestAggregateHopAllTimeoutsYieldsUnresponsive(t *testing.T) {
	raw := []queryResult{{}, {}, {}}
	hop := aggregateHop(5, raw)
	if len(hop.Queries) != 0 {
		t.Fatalf("got %d query results for an all-timeout hop, want 0", len(hop.Queries))
	}
}

func TestHopReachedTarget(t *testing.T) {
	hop := Hop{TTL: 4, Queries: []TracertQueryResult{
		{ID: 4, RTT: time.Millisecond, Addr: []string{"8.8.8.8"}},
	}}
	if !hop.ReachedTarget(net.ParseIP("8.8.8.8")) {
		t.Fatal("expected ReachedTarget to match the responding address")
	}
	if hop.ReachedTarget(net.ParseIP("1.1.1.1")) {
		t.Fatal("expected ReachedTarget to reject a non-responding address")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.MaxHops != DefaultMaxHops || cfg.NumberOfQueries != DefaultNumberOfQueries ||
		cfg.BasePort != DefaultBasePort || cfg.Timeout != DefaultTimeout || cfg.FirstTTL != DefaultFirstTTL {
		t.Fatalf("withDefaults() = %+v, missing expected defaults", cfg)
	}
}
