package bench

import (
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-tasklocks/task"
)

// Queue is a FIFO guarded by a caller-supplied lock. It exists as a usage
// contract for the locks, not as a data structure of its own: every
// operation is one short critical section.
type Queue[T any] struct {
	mu    sync.Locker
	items []T
}

// NewQueue creates a queue guarded by mu.
func NewQueue[T any](mu sync.Locker) *Queue[T] {
	return &Queue[T]{mu: mu}
}

// Push appends v under the lock.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// Pop removes and returns the front item under the lock. ok is false when
// the queue was empty.
func (q *Queue[T]) Pop() (v T, ok bool) {
	q.mu.Lock()
	if len(q.items) > 0 {
		v, ok = q.items[0], true
		q.items = q.items[1:]
	}
	q.mu.Unlock()
	return v, ok
}

// Len returns the current queue length under the lock.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	n := len(q.items)
	q.mu.Unlock()
	return n
}

// QueueCase returns a case that pushes numTasks random integers into a
// queue guarded by a fresh lock and then pops them again, each operation
// from its own task.
func QueueCase(name string, newLock func() sync.Locker) Case {
	return Case{
		Name: name + "_queue",
		Run: func(numTasks, _ uint64) {
			lock := newLock()
			queue := NewQueue[int](lock)

			var g errgroup.Group
			for i := uint64(0); i < numTasks; i++ {
				g.Go(func() error {
					task.Run(func() { queue.Push(rand.Int()) })
					return nil
				})
			}
			g.Wait()

			for i := uint64(0); i < numTasks; i++ {
				g.Go(func() error {
					task.Run(func() { queue.Pop() })
					return nil
				})
			}
			g.Wait()

			if c, ok := lock.(closer); ok {
				c.Close()
			}
		},
	}
}
