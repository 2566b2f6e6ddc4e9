package bench

import (
	"sync"

	"github.com/ahrav/go-tasklocks/alock"
	"github.com/ahrav/go-tasklocks/clh"
	"github.com/ahrav/go-tasklocks/mcs"
	"github.com/ahrav/go-tasklocks/tas"
	"github.com/ahrav/go-tasklocks/ticket"
	"github.com/ahrav/go-tasklocks/ttas"
)

// lockMaker pairs a table name with a constructor for a fresh lock.
type lockMaker struct {
	name string
	make func(numTasks uint64) sync.Locker
}

// makers lists every lock the tables compare, sync.Mutex first as the
// reference row.
func makers() []lockMaker {
	return []lockMaker{
		{"mutex", func(uint64) sync.Locker { return new(sync.Mutex) }},
		{"tas", func(uint64) sync.Locker { return tas.NewLock() }},
		{"tas_bo", func(uint64) sync.Locker { return tas.NewBackoffLock() }},
		{"ttas", func(uint64) sync.Locker { return ttas.NewLock() }},
		{"ttas_bo", func(uint64) sync.Locker { return ttas.NewBackoffLock() }},
		{"mcs", func(uint64) sync.Locker { return mcs.NewLock() }},
		{"mcs_bo", func(uint64) sync.Locker { return mcs.NewBackoffLock() }},
		{"clh", func(uint64) sync.Locker { return clh.NewLock() }},
		{"clh_bo", func(uint64) sync.Locker { return clh.NewBackoffLock() }},
		{"ticket", func(uint64) sync.Locker { return ticket.NewLock() }},
		{"alock", func(n uint64) sync.Locker { return alock.NewLock(uint32(n)) }},
	}
}

// CriticalCases returns the full benchmark matrix for the lockbench binary:
// the no-lock baseline followed by every lock under every contention
// profile. numTasks sizes the locks that need a capacity up front.
func CriticalCases(numTasks uint64) []Case {
	cases := []Case{Baseline()}
	for _, m := range makers() {
		mk := m.make
		for _, p := range []Profile{Small, Medium, Big} {
			cases = append(cases, Critical(m.name, func() sync.Locker { return mk(numTasks) }, p))
		}
	}
	return cases
}

// QueueCases returns the guarded-queue matrix for the lockqueue binary: one
// case per lock, each pushing and then popping num-push-pop items across
// tasks.
func QueueCases(numPushPop uint64) []Case {
	var cases []Case
	for _, m := range makers() {
		mk := m.make
		cases = append(cases, QueueCase(m.name, func() sync.Locker { return mk(numPushPop) }))
	}
	return cases
}
