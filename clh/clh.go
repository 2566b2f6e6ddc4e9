// Package clh implements the Craig / Landin-Hagersten (CLH) lock, a FIFO
// implicit-queue spin lock.
//
// Where an MCS waiter spins on its own node, a CLH waiter spins on its
// predecessor's: the queue exists only as the chain of predecessor pointers
// each acquirer captured from the tail exchange. A holder releases by
// flipping its own node's flag, and whichever task captured that node as its
// predecessor observes the flip and enters the critical section. Each waiter
// still spins on a distinct word, so contention stays decomposed across
// waiters even though nobody spins on memory it previously wrote.
//
// The lock starts out with a sentinel node that is already released, giving
// the first acquirer a predecessor to consume. Node ownership moves forward
// through the queue: an acquirer recycles the predecessor node it consumed,
// and the node it brought stays behind as the next acquirer's predecessor.
// Close recycles whichever node is left in the lock at the end of its life.
//
// As with mcs, nodes travel through the per-task payload slot between Lock
// and Unlock, so tasks may be suspended and resumed on different worker
// threads mid-acquisition. Lock spins with a CPU hint; BackoffLock escalates
// through exponential backoff to cooperative yields.
package clh

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ahrav/go-tasklocks/backoff"
	"github.com/ahrav/go-tasklocks/task"
)

// qnode is one position in the implicit queue. waiting stays true from the
// moment the owner enqueues until its release; only the owner writes it.
// Padded so pooled nodes cannot false-share their spin words.
type qnode struct {
	waiting atomic.Bool
	_       [60]byte
}

// nodePool recycles queue nodes. A predecessor node is reachable by exactly
// one successor, so once that successor has consumed it the node can be
// recycled without further coordination.
var nodePool = sync.Pool{New: func() any { return new(qnode) }}

// Lock is a CLH queue lock. Use NewLock; the zero value has no sentinel and
// is not usable. A Lock must not be copied after first use.
type Lock struct {
	tail atomic.Pointer[qnode]
}

// NewLock creates a new CLH lock. The tail starts at a sentinel node whose
// flag is already released, standing in for the first acquirer's
// predecessor.
func NewLock() *Lock {
	l := new(Lock)
	s := nodePool.Get().(*qnode)
	s.waiting.Store(false)
	l.tail.Store(s)
	return l
}

// Lock acquires the lock, spinning on the predecessor captured from the
// tail exchange.
func (l *Lock) Lock() {
	n := nodePool.Get().(*qnode)
	n.waiting.Store(true)
	task.SetData(unsafe.Pointer(n))

	pred := l.tail.Swap(n)
	for pred.waiting.Load() {
		task.SpinHint()
	}

	// The predecessor has been consumed; recycling it is this task's job.
	nodePool.Put(pred)
}

// Unlock releases the lock by flipping this task's node. The node is left
// in the queue for the successor to consume.
func (l *Lock) Unlock() {
	n := (*qnode)(task.Data())
	n.waiting.Store(false)
}

// IsFree reports whether the current tail position has been released.
// Advisory only.
func (l *Lock) IsFree() bool { return !l.tail.Load().waiting.Load() }

// Close recycles the node remaining in the lock. The lock must be free and
// must not be used afterwards.
func (l *Lock) Close() {
	if n := l.tail.Swap(nil); n != nil {
		nodePool.Put(n)
	}
}

// BackoffLock is a CLH lock whose waiters retreat with exponential backoff,
// cooperatively yielding once contention persists. Use NewBackoffLock; the
// zero value is not usable. A BackoffLock must not be copied after first
// use.
type BackoffLock struct {
	tail atomic.Pointer[qnode]
}

// NewBackoffLock creates a new cooperative CLH lock.
func NewBackoffLock() *BackoffLock {
	l := new(BackoffLock)
	s := nodePool.Get().(*qnode)
	s.waiting.Store(false)
	l.tail.Store(s)
	return l
}

// Lock acquires the lock, backing off further after every failed read of
// the predecessor's flag.
func (l *BackoffLock) Lock() {
	n := nodePool.Get().(*qnode)
	n.waiting.Store(true)
	task.SetData(unsafe.Pointer(n))

	pred := l.tail.Swap(n)
	k := uint64(1)
	for pred.waiting.Load() {
		k = backoff.Next(k)
		backoff.Exponential(k)
	}

	nodePool.Put(pred)
}

// Unlock releases the lock by flipping this task's node.
func (l *BackoffLock) Unlock() {
	n := (*qnode)(task.Data())
	n.waiting.Store(false)
}

// IsFree reports whether the current tail position has been released.
// Advisory only.
func (l *BackoffLock) IsFree() bool { return !l.tail.Load().waiting.Load() }

// Close recycles the node remaining in the lock. The lock must be free and
// must not be used afterwards.
func (l *BackoffLock) Close() {
	if n := l.tail.Swap(nil); n != nil {
		nodePool.Put(n)
	}
}
