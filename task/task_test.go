package task

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestCurrentStableAcrossYields(t *testing.T) {
	done := make(chan struct{})
	Go(func() {
		defer close(done)
		first := Current()
		for range 10 {
			runtime.Gosched()
			assert.Same(t, first, Current(), "identity must be stable across yields")
		}
	})
	<-done
}

func TestCurrentDistinctPerTask(t *testing.T) {
	const numTasks = 20
	var mu sync.Mutex
	seen := make(map[*Task]bool)
	var wg sync.WaitGroup

	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		Go(func() {
			defer wg.Done()
			cur := Current()
			mu.Lock()
			seen[cur] = true
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Len(t, seen, numTasks, "every task should have its own identity")
}

func TestDataRoundTrip(t *testing.T) {
	done := make(chan struct{})
	Go(func() {
		defer close(done)
		v := new(int)
		SetData(unsafe.Pointer(v))
		runtime.Gosched()
		assert.Equal(t, unsafe.Pointer(v), Data(), "payload must survive suspension")
	})
	<-done
}

func TestDataIsPerTask(t *testing.T) {
	const numTasks = 8
	var wg sync.WaitGroup
	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		Go(func() {
			defer wg.Done()
			v := new(int)
			SetData(unsafe.Pointer(v))
			runtime.Gosched()
			assert.Equal(t, unsafe.Pointer(v), Data())
		})
	}
	wg.Wait()
}

func TestRunScopesIdentity(t *testing.T) {
	var inside string
	Run(func() {
		inside = Current().String()
	})
	assert.NotEmpty(t, inside)
	assert.NotEqual(t, inside, Current().String(),
		"identity installed by Run must be dropped when it returns")
}

func TestAdoptedGoroutine(t *testing.T) {
	// A goroutine not started through Go/Run still gets a stable identity.
	first := Current()
	assert.NotNil(t, first)
	assert.Same(t, first, Current())
}

func TestYieldWhile(t *testing.T) {
	var flag atomic.Bool
	flag.Store(true)

	go func() {
		time.Sleep(5 * time.Millisecond)
		flag.Store(false)
	}()

	start := time.Now()
	YieldWhile(flag.Load)
	assert.False(t, flag.Load())
	assert.Less(t, time.Since(start), time.Second)
}

func TestYieldWhileFalsePredicate(t *testing.T) {
	calls := 0
	YieldWhile(func() bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls, "a false predicate must return without spinning")
}
