package ring

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/pavanmanishd/staticarena/critical"
)

// MaxCapacity is the largest number of slots a ring can have.
const MaxCapacity = math.MaxUint16

// Stride returns the bytes one slot occupies: the payload, its metadata, and
// padding up to align so every payload starts aligned.
func Stride(slotSize, align int) int {
	if align < 1 {
		align = 1
	}
	n := slotSize + MetaSize
	return (n + align - 1) / align * align
}

// Stats counts ring activity since construction.
type Stats struct {
	Pushed   uint64 // successful pushes
	Popped   uint64 // elements retired by Pop or PopIfVisited
	Evicted  uint64 // oldest elements discarded by a push to a full infinite ring
	Rejected uint64 // pushes refused
}

// Engine is a fixed-capacity FIFO of fixed-size slots over caller-provided
// storage. Each slot is a payload followed by MetaSize bytes of metadata.
//
// Roles: one goroutine may Push; one goroutine may Pop, PopIfVisited,
// UnhideIfHidden and Reset; any number may ReadShadow, ReadShadowBytes,
// IsNodeVisited and Count. Every access to the storage, the shared indices
// and slot metadata happens inside the engine's section, so detaching the
// storage may overlap any role.
type Engine struct {
	buf      []byte
	slotSize int
	stride   int
	capacity int
	infinite bool

	section sync.Locker
	trap    critical.Trap
	logger  *slog.Logger

	// guarded by section
	head  int
	tail  int
	count int

	pushed   atomic.Uint64
	popped   atomic.Uint64
	evicted  atomic.Uint64
	rejected atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSection sets the section guarding indices and metadata. The default
// is a *sync.Mutex.
func WithSection(s sync.Locker) Option {
	return func(e *Engine) {
		if s != nil {
			e.section = s
		}
	}
}

// WithTrap sets the trap invoked on invariant violations.
func WithTrap(t critical.Trap) Option {
	return func(e *Engine) {
		if t != nil {
			e.trap = t
		}
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over buf, which must hold capacity slots of
// stride bytes. If buf is nil or the geometry is invalid the engine has no
// storage: IsGood reports false and every operation fails.
func NewEngine(buf []byte, slotSize, stride, capacity int, infinite bool, opts ...Option) *Engine {
	e := &Engine{
		slotSize: slotSize,
		stride:   stride,
		capacity: capacity,
		infinite: infinite,
		section:  &sync.Mutex{},
		trap:     critical.PanicTrap,
		logger:   critical.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	switch {
	case buf == nil:
		e.logger.Warn("ring has no backing storage", "capacity", capacity, "slot_size", slotSize)
	case capacity < 1 || capacity > MaxCapacity || slotSize < 0 || slotSize > math.MaxUint16 ||
		stride < slotSize+MetaSize || len(buf) < capacity*stride:
		e.logger.Warn("ring geometry rejected",
			"capacity", capacity, "slot_size", slotSize, "stride", stride, "buffer", len(buf))
	default:
		e.buf = buf[:capacity*stride]
	}
	return e
}

// IsGood reports whether the engine has backing storage.
func (e *Engine) IsGood() bool {
	e.section.Lock()
	defer e.section.Unlock()
	return e.buf != nil
}

// Capacity returns the number of slots.
func (e *Engine) Capacity() int {
	return e.capacity
}

// SlotSize returns the payload bytes of one slot.
func (e *Engine) SlotSize() int {
	return e.slotSize
}

// Count returns the number of live elements, 0 without storage.
func (e *Engine) Count() int {
	e.section.Lock()
	defer e.section.Unlock()
	if e.buf == nil {
		return 0
	}
	return e.count
}

// Reset empties the ring. Slot payloads and metadata are left as they are.
func (e *Engine) Reset() {
	e.section.Lock()
	e.head, e.tail, e.count = 0, 0, 0
	e.section.Unlock()
}

// Push copies the first SlotSize bytes of data into the slot at head. A full
// ring refuses the push unless it is infinite, in which case the oldest
// element is unhidden if needed and discarded first. A hidden element is
// invisible to Pop and shadow reads until UnhideIfHidden reveals it.
func (e *Engine) Push(data []byte, hidden bool) bool {
	if data == nil || len(data) < e.slotSize {
		e.rejected.Add(1)
		return false
	}

	e.section.Lock()
	defer e.section.Unlock()

	if e.buf == nil {
		e.rejected.Add(1)
		return false
	}
	if e.count >= e.capacity {
		if !e.infinite {
			e.rejected.Add(1)
			e.logger.Debug("push rejected: ring full", "capacity", e.capacity)
			return false
		}
		e.evictLocked()
	}

	ev := Push
	if hidden {
		ev = PushHidden
	}
	payload, meta := e.slot(e.head)
	next, _ := Next(decode(meta), ev)
	copy(payload, data[:e.slotSize])
	encode(meta, next)

	e.head = e.advance(e.head)
	e.count++
	e.pushed.Add(1)
	return true
}

// Pop removes the oldest element, copying it to out unless out is nil. It
// fails if the ring is empty, the oldest element is hidden, or out is
// shorter than a slot.
func (e *Engine) Pop(out []byte) bool {
	if out != nil && len(out) < e.slotSize {
		return false
	}
	e.section.Lock()
	defer e.section.Unlock()

	if e.buf == nil || !e.retireLocked(Pop, out) {
		return false
	}
	e.popped.Add(1)
	return true
}

// PopIfVisited removes the oldest element only if a shadow reader has seen it.
func (e *Engine) PopIfVisited() bool {
	e.section.Lock()
	defer e.section.Unlock()

	if e.buf == nil || !e.retireLocked(PopIfVisited, nil) {
		return false
	}
	e.popped.Add(1)
	return true
}

// ReadShadow copies the oldest element to out without removing it and marks
// it visited.
func (e *Engine) ReadShadow(out []byte) bool {
	if out == nil || len(out) < e.slotSize {
		return false
	}
	e.section.Lock()
	defer e.section.Unlock()

	payload, ok := e.shadowLocked()
	if !ok {
		return false
	}
	copy(out, payload)
	return true
}

// ReadShadowBytes returns the oldest element in place and marks it visited.
// The slice must be treated as read-only and is valid until the element is
// retired. It returns nil on failure.
func (e *Engine) ReadShadowBytes() []byte {
	e.section.Lock()
	defer e.section.Unlock()

	payload, ok := e.shadowLocked()
	if !ok {
		return nil
	}
	return payload
}

// IsNodeVisited reports whether the oldest element has been shadow read.
func (e *Engine) IsNodeVisited() bool {
	return e.TailState() == Visited
}

// UnhideIfHidden reveals the oldest element if it is hidden.
func (e *Engine) UnhideIfHidden() bool {
	e.section.Lock()
	defer e.section.Unlock()

	return e.unhideLocked()
}

// TailState returns the state of the oldest slot, Empty if there is none.
func (e *Engine) TailState() State {
	e.section.Lock()
	defer e.section.Unlock()

	if e.buf == nil || e.count == 0 {
		return Empty
	}
	_, meta := e.slot(e.tail)
	return decode(meta)
}

// Stats returns a snapshot of the activity counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Pushed:   e.pushed.Load(),
		Popped:   e.popped.Load(),
		Evicted:  e.evicted.Load(),
		Rejected: e.rejected.Load(),
	}
}

// detach drops the storage inside the section; every later operation fails.
func (e *Engine) detach() {
	e.section.Lock()
	e.buf = nil
	e.head, e.tail, e.count = 0, 0, 0
	e.section.Unlock()
}

// evictLocked discards the oldest element of a full ring, unhiding it first.
func (e *Engine) evictLocked() {
	e.unhideLocked()
	if !e.retireLocked(Pop, nil) {
		e.fail("full ring could not evict its oldest slot")
	}
	e.evicted.Add(1)
}

func (e *Engine) unhideLocked() bool {
	if e.buf == nil || e.count == 0 {
		return false
	}
	_, meta := e.slot(e.tail)
	next, ok := Next(decode(meta), Unhide)
	if !ok {
		return false
	}
	encode(meta, next)
	return true
}

// retireLocked applies a removing event to the tail slot.
func (e *Engine) retireLocked(ev Event, out []byte) bool {
	if e.count == 0 {
		return false
	}
	payload, meta := e.slot(e.tail)
	next, ok := Next(decode(meta), ev)
	if !ok {
		return false
	}
	if out != nil {
		copy(out, payload)
	}
	encode(meta, next)

	e.tail = e.advance(e.tail)
	e.count--
	return true
}

func (e *Engine) shadowLocked() ([]byte, bool) {
	if e.buf == nil || e.count == 0 {
		return nil, false
	}
	payload, meta := e.slot(e.tail)
	next, ok := Next(decode(meta), ShadowRead)
	if !ok {
		return nil, false
	}
	encode(meta, next)
	return payload, true
}

// slot returns the payload and metadata of slot i.
func (e *Engine) slot(i int) (payload, meta []byte) {
	off := i * e.stride
	if i < 0 || i >= e.capacity || off+e.stride > len(e.buf) {
		e.fail("slot %d outside ring of %d slots", i, e.capacity)
	}
	end := off + e.slotSize
	return e.buf[off:end:end], e.buf[end : end+MetaSize : end+MetaSize]
}

func (e *Engine) advance(i int) int {
	i++
	if i >= e.capacity {
		i = 0
	}
	return i
}

// fail is only reached from inside the section, which is therefore already held.
func (e *Engine) fail(format string, args ...any) {
	critical.Fail(critical.Noop{}, e.trap, e.logger, "ring", format, args...)
}
