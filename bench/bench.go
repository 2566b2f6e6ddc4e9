// Package bench drives the lock implementations in this module under
// controlled contention profiles and prints comparative wall-clock timings.
//
// A case spawns a configurable number of tasks, each of which performs one
// critical section on a lock shared by the whole case plus a configurable
// amount of artificial busy work. Three profiles place the work differently
// relative to the critical section:
//
//   - small:  lock / increment / unlock, then the full grain outside.
//     Models fine-grained atomic updates.
//   - medium: half the grain before the lock; increment plus half the grain
//     inside. Models partially-guarded work.
//   - big:    increment plus the full grain inside the critical section.
//     Models linked-list / queue style workloads.
//
// The Invoker runs every case three times and reports the mean seconds per
// run in a two-column table.
package bench

import (
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-tasklocks/task"
)

// Work busy-waits against the monotonic clock for us microseconds. It never
// yields: the point is to occupy the critical section (or the worker) for a
// measured interval.
func Work(us uint64) {
	d := time.Duration(us) * time.Microsecond
	start := time.Now()
	for time.Since(start) < d {
	}
}

// Profile selects where a case places its artificial work relative to the
// critical section.
type Profile int

// The three contention profiles.
const (
	Small Profile = iota
	Medium
	Big
)

// String returns the profile's table-name suffix.
func (p Profile) String() string {
	switch p {
	case Small:
		return "small"
	case Medium:
		return "medium"
	default:
		return "big"
	}
}

// Case is one benchmark: a name for the table and a body run once per
// repetition.
type Case struct {
	Name string
	Run  func(numTasks, grain uint64)
}

// closer is implemented by locks that hold a node at rest (clh).
type closer interface {
	Close()
}

// Baseline returns the no-lock case: every task just performs the grain of
// artificial work.
func Baseline() Case {
	return Case{
		Name: "no_locks",
		Run: func(numTasks, grain uint64) {
			var g errgroup.Group
			for i := uint64(0); i < numTasks; i++ {
				g.Go(func() error {
					task.Run(func() { Work(grain) })
					return nil
				})
			}
			g.Wait()
		},
	}
}

// Critical returns a case driving one shared lock, built fresh by newLock
// for every repetition, under the given profile. Every task increments a
// counter shared by the whole case inside its critical section.
func Critical(name string, newLock func() sync.Locker, p Profile) Case {
	return Case{
		Name: fmt.Sprintf("%s_%s", name, p),
		Run: func(numTasks, grain uint64) {
			lock := newLock()
			var counter uint64

			var g errgroup.Group
			for i := uint64(0); i < numTasks; i++ {
				g.Go(func() error {
					task.Run(func() {
						criticalSection(lock, &counter, grain, p)
					})
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

func criticalSection(lock sync.Locker, counter *uint64, grain uint64, p Profile) {
	switch p {
	case Small:
		lock.Lock()
		*counter++
		lock.Unlock()
		Work(grain)
	case Medium:
		Work(grain / 2)
		lock.Lock()
		*counter++
		Work(grain / 2)
		lock.Unlock()
	default:
		lock.Lock()
		*counter++
		Work(grain)
		lock.Unlock()
	}
}

const reps = 3

// Invoker runs cases and writes the result table to Out.
type Invoker struct {
	NumTasks uint64
	Grain    uint64
	Out      io.Writer
}

// Run executes every case three times and prints the mean wall-clock
// seconds per run, one table row per case.
func (inv *Invoker) Run(cases ...Case) {
	fmt.Fprintf(inv.Out, "%-30s%s\n", "Name", "Time (in s)")
	for _, c := range cases {
		start := time.Now()
		for i := 0; i < reps; i++ {
			c.Run(inv.NumTasks, inv.Grain)
		}
		elapsed := time.Since(start).Seconds() / reps
		fmt.Fprintf(inv.Out, "%-30s%g\n", c.Name, elapsed)
	}
}
