package osfp

import "net"

// Run executes the nine-probe battery against target sequentially, in the
// fixed order spec.md §4.8 prescribes, and returns one ProbeResult. srcIP
// is the interface address raw packets are built with as their source.
//
// Probes never run concurrently against the same target: each crafted
// packet's own reply is what the next probe's listener would otherwise
// have to disambiguate from, so sequencing removes the need for any
// per-probe demultiplexing key beyond source/destination port.
func Run(srcIP net.IP, target ProbeTarget) (ProbeResult, error) {
	c, err := openConns()
	if err != nil {
		return ProbeResult{}, err
	}
	defer c.close()

	result := NewProbeResult(target.IP)
	result.IcmpEcho = runIcmpEcho(c, srcIP, target)
	result.IcmpTimestamp = runIcmpTimestamp(c, srcIP, target)
	result.IcmpAddressMask = runIcmpAddressMask(c, srcIP, target)
	result.IcmpInformation = runIcmpInformation(c, srcIP, target)
	result.IcmpUnreachableIP, result.IcmpUnreachableData = runIcmpUnreachable(c, target)
	result.TcpSynAck = runTcpSynAck(c, srcIP, target)
	result.TcpRstAck = runTcpRstAck(c, srcIP, target)
	result.TcpEcn = runTcpEcn(c, srcIP, target)
	result.TcpHeader = runTcpHeader(c, srcIP, target)
	return result, nil
}
