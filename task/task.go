// Package task exposes the narrow slice of a cooperative task runtime that
// the locks in this module depend on: a stable identity for the currently
// running task, a single pointer-sized payload slot attached to it, and
// cooperative spin/yield primitives.
//
// Go's scheduler is already an M:N cooperative runtime -- goroutines are the
// lightweight tasks, GOMAXPROCS is the worker count, and a goroutine may be
// moved between OS threads at any suspension point. What the runtime does not
// provide is an identity for the current goroutine, so this package maintains
// one: a registry keyed by goroutine id. Queue locks use the payload slot to
// find their waiter node again at unlock time; because the slot lives on the
// task rather than in OS-thread-local storage, it survives the task being
// descheduled and resumed on a different thread.
//
// Goroutines started through Go or Run are registered for exactly their
// lifetime. Any other goroutine that touches the package is adopted on first
// use and stays registered until the process exits; for long-lived programs
// that spawn many short-lived goroutines outside this package, prefer Go/Run.
package task

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/google/uuid"
	"github.com/petermattis/goid"
)

// Task is the per-goroutine state tracked by the registry.
type Task struct {
	uid  string
	gid  int64
	data unsafe.Pointer
}

// String returns the task's uid, useful when tracing lock handoffs.
func (t *Task) String() string { return t.uid }

// registry maps goroutine id -> *Task for every live task.
var registry sync.Map

func newTask(gid int64) *Task {
	return &Task{uid: uuid.NewString(), gid: gid}
}

// Current returns the Task of the calling goroutine, adopting the goroutine
// into the registry if it was not started through Go or Run.
func Current() *Task {
	gid := goid.Get()
	if t, ok := registry.Load(gid); ok {
		return t.(*Task)
	}
	t, _ := registry.LoadOrStore(gid, newTask(gid))
	return t.(*Task)
}

// Run executes fn as a task on the calling goroutine. The task identity is
// dropped from the registry when fn returns.
func Run(fn func()) {
	gid := goid.Get()
	registry.Store(gid, newTask(gid))
	defer registry.Delete(gid)
	fn()
}

// Go runs fn as a task on a new goroutine.
func Go(fn func()) {
	go Run(fn)
}

// SetData attaches a pointer-sized payload to the current task, replacing any
// previous payload. Only the owning task reads or writes its own slot.
func SetData(p unsafe.Pointer) { Current().data = p }

// Data returns the payload previously attached with SetData.
func Data() unsafe.Pointer { return Current().data }

// Yield suspends the current task and requeues it for later execution.
func Yield() { runtime.Gosched() }

const (
	// spinCycles is the length of one SpinHint window.
	spinCycles = 30

	// maxSpins is the number of SpinHint rounds YieldWhile burns through
	// before escalating to the scheduler.
	maxSpins = 16
)

// SpinHint burns a short, fixed window of empty iterations inside a
// busy-wait loop. It is the portable stand-in for the PAUSE / spin-loop hint
// instruction; the loop is deliberately not eliminated by the compiler.
func SpinHint() {
	for i := 0; i < spinCycles; i++ {
	}
}

// YieldWhile spins while pred stays true, escalating from spin hints to
// cooperative yields so other runnable tasks get access to this worker.
// It returns once pred observes false.
func YieldWhile(pred func() bool) {
	spins := 0
	for pred() {
		if spins < maxSpins {
			SpinHint()
			spins++
		} else {
			runtime.Gosched()
		}
	}
}
