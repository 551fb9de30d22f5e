package scan

import "sync/atomic"

// StopFlag is the shared cancellation boolean sampled cooperatively by the
// sender, receiver, and connect pool (spec.md §5). It is safe for
// concurrent use by multiple setters and observers.
type StopFlag struct {
	v atomic.Bool
}

// NewStopFlag returns a flag in the not-stopped state.
func NewStopFlag() *StopFlag { return &StopFlag{} }

// Stop sets the flag. Idempotent.
func (f *StopFlag) Stop() { f.v.Store(true) }

// Stopped reports the current state.
func (f *StopFlag) Stopped() bool { return f.v.Load() }
