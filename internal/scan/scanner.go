package scan

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Scanner is the entry point exposed to collaborators, matching spec.md
// §6's "three shapes" external interface: construction, mutator setters
// (via the ScanSetting the caller builds), and Scan/Progress.
type Scanner struct {
	setting  ScanSetting
	progress *progressPublisher
}

// New builds a Scanner from setting, applying documented defaults and
// rejecting combinations the engine cannot execute (spec.md §9's IPv6
// raw-parity decision).
func New(setting ScanSetting) (*Scanner, error) {
	setting = setting.withDefaults()
	if err := setting.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{setting: setting, progress: newProgressPublisher(1024)}, nil
}

// Progress returns the channel of ProgressEvent values published during
// Scan. One event is published per submitted probe (port=0 for host-only
// probes); an event is dropped if the channel's buffer is full.
func (s *Scanner) Progress() <-chan ProgressEvent { return s.progress.Receiver() }

// Scan runs the configured scan to completion and returns the
// accumulated ScanResult. stop may be nil, in which case Scanner uses its
// own internal flag; passing a shared *StopFlag lets an external caller
// cancel the scan from another goroutine.
//
// Implements the pseudocode contract from spec.md §4.7 exactly: connect
// pool for TcpConnectScan, otherwise open the raw sockets, spawn the
// receiver, run the sender, sleep wait_time, stop, join, drain.
func (s *Scanner) Scan(ctx context.Context, stop *StopFlag) ScanResult {
	if stop == nil {
		stop = NewStopFlag()
	}
	defer s.progress.close()

	t0 := time.Now()
	deadline := t0.Add(s.setting.Timeout)

	var result ScanResult
	var fatal bool

	if s.setting.ScanType == TcpConnectScan {
		results := runConnectPool(ctx, s.setting, s.progress, stop, deadline)
		result = results.drain()
	} else {
		conns, err := openRawConns(s.setting)
		if err != nil {
			logrus.WithError(err).WithField("scan_type", s.setting.ScanType).
				Warn("scan: failed to open raw sockets, aborting")
			result = ScanResult{Status: Error}
			fatal = true
		} else {
			defer conns.close()
			results := newScanResults()

			done := make(chan struct{})
			go func() {
				runReceiver(conns, s.setting, results, stop)
				close(done)
			}()

			if s.setting.Async {
				_ = runCooperative(ctx, conns, s.setting, s.progress, stop)
			} else {
				runSequential(conns, s.setting, s.progress, stop)
			}

			sleepUntil(ctx, s.setting.WaitTime)
			stop.Stop()
			<-done

			result = results.drain()
		}
	}

	result.Elapsed = time.Since(t0)
	if !fatal {
		switch {
		case ctx.Err() != nil:
			result.Status = Error
		case result.Elapsed > s.setting.Timeout:
			result.Status = Timeout
		default:
			result.Status = Done
		}
	}
	logrus.WithField("status", result.Status).WithField("elapsed", result.Elapsed).
		WithField("hosts", len(result.Hosts)).Debug("scan: finished")
	return result
}

// sleepUntil blocks for d or until ctx is cancelled, whichever comes
// first — the orchestrator's "grace window" suspension point from
// spec.md §5.
func sleepUntil(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
