package ticket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-tasklocks/task"
)

func TestLockConcurrentAccess(t *testing.T) {
	lock := NewLock()
	const numTasks = 100
	const iterations = 500
	counter := 0
	var wg sync.WaitGroup

	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		task.Go(func() {
			defer wg.Done()
			for range iterations {
				lock.Lock()
				counter++
				lock.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, numTasks*iterations, counter)
	assert.True(t, lock.IsFree())
}

func TestLockFairness(t *testing.T) {
	lock := NewLock()
	const numTasks = 50

	// Record the served ticket at the time each task enters; served
	// tickets must advance by exactly one per critical section.
	var heads []uint32
	var wg sync.WaitGroup

	var ready sync.WaitGroup
	ready.Add(1)

	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		task.Go(func() {
			defer wg.Done()
			ready.Wait()

			lock.Lock()
			heads = append(heads, lock.head.Load())
			lock.Unlock()
		})
	}

	ready.Done()
	wg.Wait()

	for i := 1; i < len(heads); i++ {
		assert.Equal(t, heads[i-1]+1, heads[i],
			"served tickets must be sequential: %v", heads)
	}
}

func TestTryLock(t *testing.T) {
	lock := NewLock()

	assert.True(t, lock.TryLock(), "a free lock must be acquirable")
	assert.False(t, lock.IsFree())
	assert.False(t, lock.TryLock(), "a held lock must not be acquirable")

	lock.Unlock()
	assert.True(t, lock.IsFree())
	assert.True(t, lock.TryLock())
	lock.Unlock()
}

func TestLockStress(t *testing.T) {
	lock := NewLock()
	const numTasks = 10
	const iterations = 10000
	var wg sync.WaitGroup

	start := time.Now()
	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		task.Go(func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				lock.Lock()
				lock.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Less(t, time.Since(start), 30*time.Second)
	assert.True(t, lock.IsFree())
}

func BenchmarkMutexContended(b *testing.B) {
	var mu sync.Mutex
	shared := 0
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.Lock()
			shared++
			mu.Unlock()
		}
	})
}

func BenchmarkLockContended(b *testing.B) {
	lock := NewLock()
	shared := 0
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			lock.Lock()
			shared++
			lock.Unlock()
		}
	})
}

func BenchmarkLockUncontended(b *testing.B) {
	lock := NewLock()
	for i := 0; i < b.N; i++ {
		lock.Lock()
		lock.Unlock()
	}
}

func BenchmarkMutexUncontended(b *testing.B) {
	var mu sync.Mutex
	for i := 0; i < b.N; i++ {
		mu.Lock()
		mu.Unlock()
	}
}
