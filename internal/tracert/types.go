package tracert

import (
	"net"
	"time"
)

// Protocol selects which packet a probe sends to provoke a router reply.
type Protocol int

const (
	ProtoICMP Protocol = iota
	ProtoUDP
	ProtoTCP
)

const (
	DefaultMaxHops         = 30
	DefaultFirstTTL        = 1
	DefaultNumberOfQueries = 3
	DefaultBasePort        = 33434
	DefaultTimeout         = 3 * time.Second
)

// Config configures one Tracer run. Zero values are replaced by the
// defaults above in New.
type Config struct {
	SrcIP           net.IP
	Protocol        Protocol
	MaxHops         int
	FirstTTL        int
	NumberOfQueries int
	BasePort        uint16
	Timeout         time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxHops == 0 {
		c.MaxHops = DefaultMaxHops
	}
	if c.FirstTTL == 0 {
		c.FirstTTL = DefaultFirstTTL
	}
	if c.NumberOfQueries == 0 {
		c.NumberOfQueries = DefaultNumberOfQueries
	}
	if c.BasePort == 0 {
		c.BasePort = DefaultBasePort
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// TracertQueryResult is one distinct responder at a hop: the TTL that
// produced it (ID), the slowest RTT observed among the queries that
// responder answered (same-unit time.Duration comparisons throughout — see
// hop.go), and its address (Addr holds exactly one entry). A hop whose
// probes all timed out has no TracertQueryResult at all.
type TracertQueryResult struct {
	ID   uint8
	RTT  time.Duration
	Addr []string
}

// queryResult is a single probe's raw outcome before per-hop aggregation.
// An empty Addr marks a timeout.
type queryResult struct {
	RTT  time.Duration
	Addr string
}
