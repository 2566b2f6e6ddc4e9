// Package alock implements an array-based queue lock: a fixed ring of
// padded flags, one per concurrent acquirer, granted in FIFO order. Each
// waiter spins on its own slot, so the lock combines ticket-style fairness
// with local spinning at the cost of memory proportional to the supported
// number of tasks.
//
// The capacity passed to NewLock bounds how many tasks may contend at once.
// If more tasks than that ever hold or wait for the lock simultaneously,
// two of them share a slot and mutual exclusion is lost; sizing is the
// caller's contract.
//
// A waiter's slot index is carried in the per-task payload slot between
// Lock and Unlock, so a task may be suspended and resumed on a different
// worker thread while it waits.
package alock

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ahrav/go-tasklocks/task"
)

// flag is one ring slot, padded to a cache line so neighbouring waiters
// spin on distinct lines.
type flag struct {
	v atomic.Uint32
	_ [60]byte
}

// slotPool recycles the slot-index cells published through the task
// payload slot.
var slotPool = sync.Pool{New: func() any { return new(uint32) }}

// Lock is an array-based queue lock for at most a fixed number of
// concurrent tasks. Use NewLock; a Lock must not be copied after first use.
type Lock struct {
	flags []flag
	tail  atomic.Uint32
	size  uint32
}

// NewLock creates an array lock supporting up to maxTasks concurrent
// acquirers.
func NewLock(maxTasks uint32) *Lock {
	l := &Lock{
		flags: make([]flag, maxTasks),
		size:  maxTasks,
	}
	// The first slot starts granted so the first acquirer passes through.
	l.flags[0].v.Store(1)
	return l
}

// Lock acquires the lock, spinning on the slot assigned by the ring
// counter.
func (l *Lock) Lock() {
	slot := (l.tail.Add(1) - 1) % l.size

	s := slotPool.Get().(*uint32)
	*s = slot
	task.SetData(unsafe.Pointer(s))

	for l.flags[slot].v.Load() == 0 {
		task.SpinHint()
	}
}

// Unlock releases the lock, granting the next slot in the ring.
func (l *Lock) Unlock() {
	s := (*uint32)(task.Data())
	slot := *s
	slotPool.Put(s)

	l.flags[slot].v.Store(0)
	l.flags[(slot+1)%l.size].v.Store(1)
}
