// Package backoff implements the exponential backoff shared by the
// cooperative lock variants. Callers own the contention counter: start it at
// 1, shift it left by one on every failed attempt, and hand it to Exponential
// each round. The utility keeps no state of its own.
package backoff

import "github.com/ahrav/go-tasklocks/task"

const (
	// yieldThreshold is the counter value past which a waiter stops burning
	// CPU and hands its worker back to the scheduler.
	yieldThreshold = 32

	// hintThreshold is the counter value past which the spin emits CPU
	// spin-loop hints instead of plain no-ops.
	hintThreshold = 16
)

// yield is a seam so tests can observe escalation.
var yield = task.Yield

// Exponential applies one round of backoff for the contention counter k.
//
//	k > 32: cooperatively suspend the current task
//	k > 16: emit k/2 CPU spin-loop hints
//	else:   emit k/2 plain no-ops
func Exponential(k uint64) {
	switch {
	case k > yieldThreshold:
		yield()
	case k > hintThreshold:
		for i := k >> 1; i > 0; i-- {
			task.SpinHint()
		}
	default:
		for i := k >> 1; i > 0; i-- {
		}
	}
}

// Next doubles a contention counter, saturating well past the yield
// threshold so the counter never wraps back into the spinning range.
func Next(k uint64) uint64 {
	if k <= yieldThreshold*2 {
		k <<= 1
	}
	return k
}
