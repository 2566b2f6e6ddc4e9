// Package ttas implements the test-and-test-and-set spin lock. It keeps the
// single-word state of the plain test-and-set lock but splits acquisition
// into a read phase and a swap phase: a waiter only issues the atomic swap
// after a plain load has seen the lock free. While the lock is held the
// waiters therefore perform only loads, which can be satisfied from a shared
// cache line instead of bouncing it between cores in exclusive state.
//
// Fairness matches tas: none. Lock spins with a CPU hint in the read phase;
// BackoffLock runs the read phase under the runtime's yield-while primitive
// so persistent contention deschedules the waiter.
package ttas

import (
	"sync/atomic"

	"github.com/ahrav/go-tasklocks/task"
)

// Lock is a test-and-test-and-set spin lock. The zero value is an unlocked
// lock. A Lock must not be copied after first use.
type Lock struct {
	state atomic.Bool
}

// NewLock creates a new unlocked Lock.
func NewLock() *Lock { return new(Lock) }

// Lock acquires the lock. The inner loop is the contention probe: it reads
// until the lock looks free, and only then tries the swap. A failed swap
// means another waiter won the race, so the probe starts over.
func (l *Lock) Lock() {
	for {
		for l.state.Load() {
			task.SpinHint()
		}
		if !l.state.Swap(true) {
			return
		}
	}
}

// Unlock releases the lock.
func (l *Lock) Unlock() {
	l.state.Store(false)
}

// IsLocked reports whether the lock is currently held. Advisory only.
func (l *Lock) IsLocked() bool { return l.state.Load() }

// BackoffLock is a test-and-test-and-set lock whose read phase cooperatively
// yields while the lock stays held. The zero value is an unlocked lock.
// A BackoffLock must not be copied after first use.
type BackoffLock struct {
	state atomic.Bool
}

// NewBackoffLock creates a new unlocked BackoffLock.
func NewBackoffLock() *BackoffLock { return new(BackoffLock) }

// Lock acquires the lock, descheduling the task while the lock stays held.
func (l *BackoffLock) Lock() {
	for {
		task.YieldWhile(l.IsLocked)
		if !l.state.Swap(true) {
			return
		}
	}
}

// Unlock releases the lock.
func (l *BackoffLock) Unlock() {
	l.state.Store(false)
}

// IsLocked reports whether the lock is currently held. Advisory only.
func (l *BackoffLock) IsLocked() bool { return l.state.Load() }
