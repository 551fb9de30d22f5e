// Package target expands the user-facing target and port expressions
// (IP literal, CIDR, dotted-range, DNS name; port N or lo-hi) into the
// concrete plan the scan orchestrator consumes. It is grounded on the
// original scanner's parse_ip_range / parse_str_ports in
// original_source/libs/e-libscanner/src/utils/cmd_input.rs, reworked from
// that function's per-token string matching into small dedicated parsers.
package target

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Expand parses each input token and appends its resolved addresses, in
// token order, to the returned slice. A single malformed token aborts the
// whole expansion and names the offending token in the error, per
// spec.md §4.1 ("Failure to parse any single input aborts the whole
// expansion with an error naming the offending token").
func Expand(ctx context.Context, inputs []string) ([]net.IP, error) {
	var out []net.IP
	for _, in := range inputs {
		ips, err := expandOne(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("target: invalid target %q: %w", in, err)
		}
		out = append(out, ips...)
	}
	return out, nil
}

func expandOne(ctx context.Context, in string) ([]net.IP, error) {
	switch {
	case strings.Contains(in, "/"):
		return expandCIDR(in)
	case isDottedRange(in):
		return expandDottedRange(in)
	default:
		if ip := net.ParseIP(in); ip != nil {
			return []net.IP{ip}, nil
		}
		return expandDNSName(ctx, in)
	}
}

// expandCIDR enumerates host addresses in network. For IPv4 the network
// and broadcast addresses are excluded (spec.md §4.1, §8's cardinality
// invariant |expand(A/N)| = 2^(32-N) - 2 for N<=30); IPv6 has no
// broadcast concept, so the full range is returned.
func expandCIDR(s string) ([]net.IP, error) {
	ip, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, err
	}

	if v4 := ip.To4(); v4 != nil {
		return expandCIDRv4(ipnet)
	}
	return expandCIDRv6(ipnet)
}

func expandCIDRv4(ipnet *net.IPNet) ([]net.IP, error) {
	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		return nil, fmt.Errorf("not an IPv4 network")
	}
	if ones >= 31 {
		// /31 and /32 have no distinct network/broadcast to exclude;
		// treat every address in the block as a host.
		var out []net.IP
		for ip := ipnet.IP.Mask(ipnet.Mask); ipnet.Contains(ip); incIP(ip) {
			out = append(out, cloneIP(ip))
		}
		return out, nil
	}

	network := ipv4ToUint32(ipnet.IP.Mask(ipnet.Mask))
	hostBits := 32 - ones
	broadcast := network | (1<<uint(hostBits) - 1)

	var out []net.IP
	for v := network + 1; v < broadcast; v++ {
		out = append(out, uint32ToIPv4(v))
	}
	return out, nil
}

func expandCIDRv6(ipnet *net.IPNet) ([]net.IP, error) {
	var out []net.IP
	count := 0
	const maxIPv6Hosts = 1 << 20 // guard against accidental /8-scale expansion
	for ip := ipnet.IP.Mask(ipnet.Mask); ipnet.Contains(ip) && count < maxIPv6Hosts; incIP(ip) {
		out = append(out, cloneIP(ip))
		count++
	}
	return out, nil
}

// isDottedRange reports whether s looks like a four-octet address with at
// least one "lo-hi" octet, as opposed to a bare IP literal or DNS name.
func isDottedRange(s string) bool {
	if !strings.Contains(s, "-") {
		return false
	}
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789-") != "" {
			return false
		}
	}
	return true
}

// expandDottedRange parses "a1-a2.b1-b2.c1-c2.d1-d2" (each octet a single
// value or an inclusive lo-hi range) into the Cartesian product of the
// four per-octet ranges, matching parse_ip_range's range-ip branch in
// cmd_input.rs exactly (nested loops, inclusive bounds).
func expandDottedRange(s string) ([]net.IP, error) {
	octets := strings.Split(s, ".")
	if len(octets) != 4 {
		return nil, fmt.Errorf("dotted range must have four octets")
	}

	var ranges [4][2]int
	for i, o := range octets {
		lo, hi, err := parseOctetRange(o)
		if err != nil {
			return nil, err
		}
		ranges[i] = [2]int{lo, hi}
	}

	var out []net.IP
	for a := ranges[0][0]; a <= ranges[0][1]; a++ {
		for b := ranges[1][0]; b <= ranges[1][1]; b++ {
			for c := ranges[2][0]; c <= ranges[2][1]; c++ {
				for d := ranges[3][0]; d <= ranges[3][1]; d++ {
					out = append(out, net.IPv4(byte(a), byte(b), byte(c), byte(d)))
				}
			}
		}
	}
	return out, nil
}

func parseOctetRange(o string) (lo, hi int, err error) {
	lo, hi = 0, 0
	before, after, found := strings.Cut(o, "-")
	if !found {
		v, err := strconv.Atoi(o)
		if err != nil || v < 0 || v > 255 {
			return 0, 0, fmt.Errorf("invalid octet %q", o)
		}
		return v, v, nil
	}
	lo, err = strconv.Atoi(before)
	if err != nil || lo < 0 || lo > 255 {
		return 0, 0, fmt.Errorf("invalid octet range %q", o)
	}
	hi, err = strconv.Atoi(after)
	if err != nil || hi < 0 || hi > 255 || hi < lo {
		return 0, 0, fmt.Errorf("invalid octet range %q", o)
	}
	return lo, hi, nil
}

// expandDNSName resolves name to every address of record, A and AAAA
// alike. The caller is responsible for deduplicating against other
// expanded targets; the engine tolerates duplicates (spec.md §3).
func expandDNSName(ctx context.Context, name string) ([]net.IP, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses found")
	}
	out := make([]net.IP, len(addrs))
	for i, a := range addrs {
		out[i] = a.IP
	}
	return out, nil
}

func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			break
		}
	}
}

func cloneIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	return out
}

func ipv4ToUint32(ip net.IP) uint32 {
	v4 := ip.To4()
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}

func uint32ToIPv4(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// ExpandPorts parses a list of port tokens ("N" or "lo-hi") into the
// ordered, duplicate-preserving port sequence spec.md §4.1 and §8
// describe. "lo-hi" is deliberately half-open ([lo, hi)) while IP ranges
// above are inclusive — a documented asymmetry (spec.md §9), not a bug to
// silently fix.
func ExpandPorts(inputs []string) ([]uint16, error) {
	var out []uint16
	for _, s := range inputs {
		before, after, found := strings.Cut(s, "-")
		if !found {
			v, err := strconv.ParseUint(s, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("target: invalid port %q: %w", s, err)
			}
			out = append(out, uint16(v))
			continue
		}

		lo, err := strconv.ParseUint(before, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("target: invalid port range %q: %w", s, err)
		}
		hi, err := strconv.ParseUint(after, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("target: invalid port range %q: %w", s, err)
		}
		if hi <= lo {
			continue // empty half-open range; nothing to add
		}
		for p := lo; p < hi; p++ {
			out = append(out, uint16(p))
		}
	}
	return out, nil
}
