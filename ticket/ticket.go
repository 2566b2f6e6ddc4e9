// Package ticket provides a fair mutual exclusion lock built on a pair of
// counters: tail hands out tickets, head announces the ticket currently
// being served. Requests are granted in the exact order the tickets were
// drawn, so the lock is FIFO like the queue locks in this module, while
// keeping all state in two words instead of a waiter queue.
//
// The trade-off is that every waiter spins on the same head word, so the
// lock does not scale like mcs or clh under heavy contention. Waiters
// retreat with exponential backoff, cooperatively yielding once their wait
// persists.
package ticket

import (
	"sync/atomic"

	"github.com/ahrav/go-tasklocks/backoff"
)

// Lock is a ticket lock. The lock is free when head == tail+1. Use NewLock;
// a Lock must not be copied after first use.
type Lock struct {
	head atomic.Uint32 // ticket currently served
	tail atomic.Uint32 // last ticket issued
}

// NewLock creates a new unlocked ticket lock.
func NewLock() *Lock {
	l := new(Lock)
	l.head.Store(1)
	return l
}

// Lock draws a ticket and waits until head reaches it.
func (l *Lock) Lock() {
	me := l.tail.Add(1)

	// Fast path for the uncontended case.
	if l.head.Load() == me {
		return
	}

	k := uint64(1)
	for l.head.Load() != me {
		k = backoff.Next(k)
		backoff.Exponential(k)
	}
}

// TryLock attempts to acquire the lock without waiting. It returns true if
// the lock was free and the caller's ticket was issued before any other.
func (l *Lock) TryLock() bool {
	t := l.tail.Load()
	if l.head.Load() != t+1 {
		return false
	}
	// If no other ticket was drawn in between, t+1 is ours and equals
	// head, so winning the CAS acquires the lock.
	return l.tail.CompareAndSwap(t, t+1)
}

// Unlock releases the lock, serving the next ticket.
func (l *Lock) Unlock() {
	l.head.Add(1)
}

// IsFree reports whether the lock is currently free. Advisory only.
func (l *Lock) IsFree() bool {
	return l.head.Load() == l.tail.Load()+1
}
