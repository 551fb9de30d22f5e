// Package dnsutil provides the forward/reverse DNS resolution primitive
// used by the probe engine's DNS mode. It is deliberately thin: caching,
// retries, and batching policy belong to a higher-level DNS helper outside
// this module.
package dnsutil

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
)

// ResultKind discriminates the three shapes a DNS lookup can produce.
type ResultKind int

const (
	// KindHost means the source was an IP literal and Host carries the
	// resolved PTR name.
	KindHost ResultKind = iota
	// KindAddr means the source was a name and Addrs carries the resolved
	// addresses.
	KindAddr
	// KindError means the lookup failed; Err carries the reason.
	KindError
)

// Result is one entry of a resolution batch.
type Result struct {
	// Src is the original input token (IP literal or DNS name).
	Src string
	Kind Kind
}

// Kind is the closed sum type DnsResultType from the spec: exactly one of
// Host, Addrs, or Err is meaningful, selected by Tag.
type Kind struct {
	Tag   ResultKind
	Host  string
	Addrs []net.IP
	Err   string
}

func (k Kind) String() string {
	switch k.Tag {
	case KindHost:
		return fmt.Sprintf("Host[%s]", k.Host)
	case KindAddr:
		return fmt.Sprintf("Addr[%v]", k.Addrs)
	default:
		return fmt.Sprintf("Err[%s]", k.Err)
	}
}

func (r Result) String() string {
	return fmt.Sprintf("[src_ip[%s] %s]", r.Src, r.Kind)
}

// Resolve runs one forward-or-reverse lookup per target concurrently and
// returns one Result per input, in input order. An IP-literal target is
// reverse-resolved; anything else is forward-resolved.
func Resolve(ctx context.Context, targets []string) []Result {
	results := make([]Result, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			results[i] = resolveOne(ctx, target)
		}(i, target)
	}
	wg.Wait()

	return results
}

func resolveOne(ctx context.Context, target string) Result {
	if ip := net.ParseIP(target); ip != nil {
		names, err := net.DefaultResolver.LookupAddr(ctx, ip.String())
		if err != nil {
			return Result{Src: target, Kind: Kind{Tag: KindError, Err: err.Error()}}
		}
		if len(names) == 0 {
			return Result{Src: target, Kind: Kind{Tag: KindError, Err: "no PTR record"}}
		}
		return Result{Src: target, Kind: Kind{Tag: KindHost, Host: strings.TrimSuffix(names[0], ".")}}
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, target)
	if err != nil {
		return Result{Src: target, Kind: Kind{Tag: KindError, Err: err.Error()}}
	}
	ips := make([]net.IP, len(addrs))
	for i, a := range addrs {
		ips[i] = a.IP
	}
	return Result{Src: target, Kind: Kind{Tag: KindAddr, Addrs: ips}}
}
