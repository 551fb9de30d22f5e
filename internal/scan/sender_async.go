package scan

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// runCooperative is the cooperative bounded-concurrency sender variant
// from spec.md §4.4(2): at most HostsConcurrency destinations in flight,
// at most PortsConcurrency ports per destination in flight. Ordering
// between hosts/ports is unspecified; within one host, port emissions
// begin in configured order.
//
// golang.org/x/sync/errgroup.SetLimit is the idiomatic Go analogue of the
// original's rayon into_par_iter() bounded parallelism in
// sync_scan/unix.rs, adopted here as the pack's established concurrency
// primitive rather than a hand-rolled semaphore.
func runCooperative(ctx context.Context, conns *rawConns, st ScanSetting, progress *progressPublisher, stop *StopFlag) error {
	hostGroup, hostCtx := errgroup.WithContext(ctx)
	hostGroup.SetLimit(st.HostsConcurrency)

	for _, d := range st.Destinations {
		d := d
		hostGroup.Go(func() error {
			if stop.Stopped() || hostCtx.Err() != nil {
				return nil
			}

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
					if stop.Stopped() {
						return nil
					}

					_ = emitProbe(conns, st, d.IP, port)

					reportPort := port
					if reportHostOnly {
						reportPort = 0
					}
					progress.publish(ProgressEvent{IP: d.IP, Port: reportPort})

					if st.SendRate > 0 {
						time.Sleep(st.SendRate)
					}
					return nil
				})
			}
			return portGroup.Wait()
		})
	}

	return hostGroup.Wait()
}
