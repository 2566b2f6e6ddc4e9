// Package tas implements the test-and-set spin lock, the simplest mutual
// exclusion primitive in this module: a single atomic word that every
// acquirer hammers with an atomic swap until it observes the unlocked value.
//
// The lock is unfair -- under contention there is no bound on how often a
// waiter can be overtaken -- but its acquire and release paths are a single
// atomic operation each, which makes it the baseline the queue locks in this
// module are measured against.
//
// Two variants are provided. Lock busy-spins with a CPU spin hint between
// attempts. BackoffLock escalates through exponential backoff to a
// cooperative yield, so that on an oversubscribed worker pool the waiters
// give the lock holder (and unrelated tasks) access to the workers.
package tas

import (
	"sync/atomic"

	"github.com/ahrav/go-tasklocks/backoff"
	"github.com/ahrav/go-tasklocks/task"
)

// Lock is a test-and-set spin lock. The zero value is an unlocked lock.
// A Lock must not be copied after first use.
type Lock struct {
	state atomic.Bool
}

// NewLock creates a new unlocked Lock.
func NewLock() *Lock { return new(Lock) }

// Lock acquires the lock, spinning until the swap observes it free.
func (l *Lock) Lock() {
	for l.state.Swap(true) {
		task.SpinHint()
	}
}

// Unlock releases the lock.
func (l *Lock) Unlock() {
	l.state.Store(false)
}

// IsLocked reports whether the lock is currently held. The result is
// advisory: it can be stale by the time the caller looks at it and must not
// be used for synchronization.
func (l *Lock) IsLocked() bool { return l.state.Load() }

// BackoffLock is a test-and-set lock whose waiters retreat with exponential
// backoff, cooperatively yielding once contention persists. The zero value
// is an unlocked lock. A BackoffLock must not be copied after first use.
type BackoffLock struct {
	state atomic.Bool
}

// NewBackoffLock creates a new unlocked BackoffLock.
func NewBackoffLock() *BackoffLock { return new(BackoffLock) }

// Lock acquires the lock, backing off further after every failed swap.
func (l *BackoffLock) Lock() {
	k := uint64(1)
	for l.state.Swap(true) {
		k = backoff.Next(k)
		backoff.Exponential(k)
	}
}

// Unlock releases the lock.
func (l *BackoffLock) Unlock() {
	l.state.Store(false)
}

// IsLocked reports whether the lock is currently held. Advisory only.
func (l *BackoffLock) IsLocked() bool { return l.state.Load() }
