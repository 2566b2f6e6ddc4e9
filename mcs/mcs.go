// Package mcs implements the Mellor-Crummey Scott (MCS) lock, a scalable
// FIFO queue-based spin lock.
//
// An MCS lock provides several advantages over single-word spin locks:
//   - FIFO ordering ensures fair lock acquisition
//   - Each waiter spins on its own node, reducing memory contention and
//     cache invalidation on the lock word
//   - Memory usage scales with the number of tasks contending for the lock
//   - Predictable performance under high contention
//
// Waiter nodes are managed internally: an acquiring task draws a node from a
// pool and publishes it through its per-task payload slot, so the matching
// Unlock finds it again even if the scheduler moved the task to a different
// worker thread in between. Callers therefore use the lock like any other
// sync.Locker:
//
//	lock := mcs.NewLock()
//	lock.Lock()
//	// ... critical section ...
//	lock.Unlock()
//
// Lock spins on its node with a CPU spin hint; BackoffLock waits under the
// runtime's cooperative yield-while primitive so a blocked task gives up its
// worker. Both variants grant the lock in the exact order the acquirers
// linearized on the tail exchange.
package mcs

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ahrav/go-tasklocks/task"
)

// qnode is one in-flight acquisition in the waiter queue.
//
// Single-writer discipline: waiting is cleared only by the predecessor when
// it releases to us; next is written only by the successor after it has
// installed itself as tail. The node is padded so pooled nodes on the same
// cache line cannot false-share their spin words.
type qnode struct {
	waiting atomic.Uint32
	next    atomic.Pointer[qnode]
	_       [48]byte
}

// nodePool recycles waiter nodes. A node goes back to the pool only once no
// other task can reach it: in the releaser, after the wake has been
// published and next cleared.
var nodePool = sync.Pool{New: func() any { return new(qnode) }}

// Lock is an MCS queue lock. The zero value is an unlocked lock.
// A Lock must not be copied after first use.
type Lock struct {
	tail atomic.Pointer[qnode]
}

// NewLock creates a new MCS lock.
func NewLock() *Lock { return new(Lock) }

// Lock acquires the lock, enqueueing the caller in FIFO order.
func (l *Lock) Lock() {
	n := nodePool.Get().(*qnode)
	n.next.Store(nil)
	task.SetData(unsafe.Pointer(n))

	// The exchange linearizes acquirers into the queue.
	pred := l.tail.Swap(n)
	if pred == nil {
		return
	}

	// waiting must be set before the node becomes reachable through
	// pred.next; the predecessor's release clears it exactly once.
	n.waiting.Store(1)
	pred.next.Store(n)

	for n.waiting.Load() != 0 {
		task.SpinHint()
	}
}

// Unlock releases the lock, waking the successor if one is queued.
func (l *Lock) Unlock() {
	n := (*qnode)(task.Data())

	if n.next.Load() == nil {
		// No successor visible. If the tail still points at us, nobody
		// else is in line and the release is complete.
		if l.tail.CompareAndSwap(n, nil) {
			nodePool.Put(n)
			return
		}

		// A successor has swapped the tail but has not linked itself
		// into next yet; wait for the publication.
		for n.next.Load() == nil {
			task.SpinHint()
		}
	}

	succ := n.next.Load()
	succ.waiting.Store(0)
	n.next.Store(nil)
	nodePool.Put(n)
}

// IsFree reports whether the lock currently has no holder and no waiters.
// Advisory only.
func (l *Lock) IsFree() bool { return l.tail.Load() == nil }

// BackoffLock is an MCS lock whose waiters are cooperatively descheduled
// while their predecessor holds the lock. The zero value is an unlocked
// lock. A BackoffLock must not be copied after first use.
type BackoffLock struct {
	tail atomic.Pointer[qnode]
}

// NewBackoffLock creates a new cooperative MCS lock.
func NewBackoffLock() *BackoffLock { return new(BackoffLock) }

// Lock acquires the lock, yielding the worker while the wait persists.
func (l *BackoffLock) Lock() {
	n := nodePool.Get().(*qnode)
	n.next.Store(nil)
	task.SetData(unsafe.Pointer(n))

	pred := l.tail.Swap(n)
	if pred == nil {
		return
	}

	n.waiting.Store(1)
	pred.next.Store(n)

	task.YieldWhile(func() bool { return n.waiting.Load() != 0 })
}

// Unlock releases the lock, waking the successor if one is queued. The wait
// for a mid-enqueue successor is a short spin: the successor is between its
// tail exchange and its next publication, a bounded handful of instructions.
func (l *BackoffLock) Unlock() {
	n := (*qnode)(task.Data())

	if n.next.Load() == nil {
		if l.tail.CompareAndSwap(n, nil) {
			nodePool.Put(n)
			return
		}

		for n.next.Load() == nil {
			task.SpinHint()
		}
	}

	succ := n.next.Load()
	succ.waiting.Store(0)
	n.next.Store(nil)
	nodePool.Put(n)
}

// IsFree reports whether the lock currently has no holder and no waiters.
// Advisory only.
func (l *BackoffLock) IsFree() bool { return l.tail.Load() == nil }
