// Package critical provides the exclusion primitive shared by the static
// arena and the ring engine, plus the trap used when an internal invariant
// is violated.
//
// A section is any sync.Locker: Lock makes the following accesses appear
// indivisible with respect to an asynchronous producer, Unlock ends the
// section. On interrupt-driven targets that is a disable/enable interrupts
// pair (see Interrupts); on hosted targets a *sync.Mutex or a Spin lock.
package critical

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Noop is a section for single-threaded targets with no asynchronous producer.
type Noop struct{}

func (Noop) Lock()   {}
func (Noop) Unlock() {}

// Interrupts adapts an integration-supplied interrupt mask pair to a section.
// Either function may be nil.
type Interrupts struct {
	Disable func()
	Enable  func()
}

// Lock disables interrupts.
func (i Interrupts) Lock() {
	if i.Disable != nil {
		i.Disable()
	}
}

// Unlock re-enables interrupts.
func (i Interrupts) Unlock() {
	if i.Enable != nil {
		i.Enable()
	}
}

// Spin is a test-and-set spinlock for sections that are only ever held for a
// handful of field accesses. The zero value is unlocked.
type Spin struct {
	_     cpu.CacheLinePad
	state atomic.Uint32
	_     cpu.CacheLinePad
}

// Lock spins until the section is acquired, yielding between attempts.
func (s *Spin) Lock() {
	for !s.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// TryLock acquires the section if it is free.
func (s *Spin) TryLock() bool {
	return s.state.CompareAndSwap(0, 1)
}

// Unlock releases the section. Unlocking an unlocked Spin panics, as with sync.Mutex.
func (s *Spin) Unlock() {
	if !s.state.CompareAndSwap(1, 0) {
		panic("critical: unlock of unlocked Spin")
	}
}

// Do runs fn inside sec.
func Do(sec sync.Locker, fn func()) {
	sec.Lock()
	defer sec.Unlock()
	fn()
}

// OrNoop returns sec, or Noop if sec is nil.
func OrNoop(sec sync.Locker) sync.Locker {
	if sec == nil {
		return Noop{}
	}
	return sec
}
