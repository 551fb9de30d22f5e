package scan

import "time"

// runSequential is the simple sequential sender variant from spec.md
// §4.4(1): for each destination, for each port, build packet, write to
// raw socket, publish a progress event, sleep send_rate. Send errors are
// swallowed — best-effort scanning, per spec.md §7 — but the progress
// event still fires so callers see an honest denominator.
//
// Grounded on sync_scan/unix.rs's send_icmp_echo_packets /
// send_tcp_syn_packets / send_udp_packets, which follow the identical
// send→progress→sleep shape per emission.
func runSequential(conns *rawConns, st ScanSetting, progress *progressPublisher, stop *StopFlag) {
	for _, d := range st.Destinations {
		if stop.Stopped() {
			return
		}
		ports := d.Ports
		reportHostOnly := len(ports) == 0
		if reportHostOnly {
			ports = []uint16{0}
		}

		for _, port := range ports {
			if stop.Stopped() {
				return
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
		}
	}
}
