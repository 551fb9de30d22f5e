package scan

import (
	"context"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// runConnectPool implements the TcpConnectScan path from spec.md §4.6: for
// each (ip, port) in the plan, acquire a fresh TCP socket with a 200ms
// connect timeout; success records Open, failure records nothing (closed
// and filtered are indistinguishable over a plain connect). Concurrency
// is bounded by PortsConcurrency per host and HostsConcurrency across
// hosts; the pool checks the overall timeout and the stop flag between
// submissions.
//
// Grounded on sync_scan/unix.rs's run_connect_scan (Socket::connect_timeout
// at 200ms, into_par_iter bounded parallelism, mutex-guarded result map
// update) — translated to errgroup.SetLimit the same way runCooperative
// translates the sibling sender path.
func runConnectPool(ctx context.Context, st ScanSetting, progress *progressPublisher, stop *StopFlag, deadline time.Time) *scanResults {
	results := newScanResults()

	hostGroup, hostCtx := errgroup.WithContext(ctx)
	hostGroup.SetLimit(st.HostsConcurrency)

	for _, d := range st.Destinations {
		d := d
		hostGroup.Go(func() error {
			ports := d.Ports
			reportHostOnly := len(ports) == 0
			if reportHostOnly {
				ports = []uint16{0}
			}

			portGroup, _ := errgroup.WithContext(hostCtx)
			portGroup.SetLimit(st.PortsConcurrency)

			for _, port := range ports {
				port := port
				portGroup.Go(func() error {
					if stop.Stopped() || time.Now().After(deadline) {
						return nil
					}

					reportPort := port
					if reportHostOnly {
						reportPort = 0
					} else {
						tryConnect(d.IP, port, results)
					}
					progress.publish(ProgressEvent{IP: d.IP, Port: reportPort})
					return nil
				})
			}
			return portGroup.Wait()
		})
	}

	hostGroup.Wait()
	return results
}

func tryConnect(ip net.IP, port uint16, results *scanResults) {
	addr := net.JoinHostPort(ip.String(), strconv.Itoa(int(port)))
	conn, err := net.DialTimeout("tcp", addr, DefaultConnectTimeout)
	if err != nil {
		return
	}
	defer conn.Close()
	results.recordPort(ip, port, Open)
}
