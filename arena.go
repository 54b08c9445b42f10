// Package arena implements a fixed-size static heap: a single byte region
// divided into a chain of variable-size pages, with first-fit allocation and
// coalescing on free. It never grows and never returns memory to the runtime.
package arena

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"unsafe"

	"github.com/pavanmanishd/staticarena/critical"
)

const (
	// Alignment is the allocation granularity: the machine word.
	Alignment = int(unsafe.Sizeof(uintptr(0)))

	// HeaderSize is the bookkeeping overhead charged to every page.
	HeaderSize = 2 * Alignment

	// DefaultSize is the arena size used when none is given (4 KiB).
	DefaultSize = 4096

	// MaxSize is the largest arena, and the largest single request.
	MaxSize = math.MaxUint16

	// MinSize holds one header and one aligned payload word.
	MinSize = HeaderSize + Alignment
)

// noPage marks the absent predecessor of the first page.
const noPage = -1

var (
	// ErrInvalidSize is returned when an arena size is out of range.
	ErrInvalidSize = errors.New("arena: invalid size")
	// ErrOutOfMemory is returned by helpers that report a failed allocation as an error.
	ErrOutOfMemory = errors.New("arena: out of memory")
)

// Handle identifies an allocation by the offset of its payload in the arena.
// The zero Handle is never a valid allocation.
type Handle uint16

// Nil is the failed or absent allocation.
const Nil Handle = 0

// page is one entry of the descriptor table. Entries are indexed by
// offset/Alignment and are meaningful only at offsets reachable by walking
// the chain from offset 0.
type page struct {
	size int  // payload bytes, excluding the header
	free bool // not handed out
	prev int  // offset of the preceding page, noPage for the first
}

// Arena is a fixed-size static heap. It is not goroutine-safe: callers
// sharing an Arena between goroutines must serialize Alloc and Free
// themselves, or use SafeArena.
type Arena struct {
	words    []uint64 // keeps buf word-aligned
	buf      []byte
	pages    []page
	size     int
	freeSize int

	initOnce sync.Once

	logger  *slog.Logger
	trap    critical.Trap
	section sync.Locker
}

// Option configures an Arena.
type Option func(*Arena)

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Arena) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTrap sets the trap invoked on invariant violations.
func WithTrap(t critical.Trap) Option {
	return func(a *Arena) {
		if t != nil {
			a.trap = t
		}
	}
}

// WithSection sets the section entered, and never left, when an invariant
// violation halts the arena.
func WithSection(s sync.Locker) Option {
	return func(a *Arena) {
		if s != nil {
			a.section = s
		}
	}
}

// New creates an Arena of size bytes, rounded down to Alignment.
// If size <= 0, DefaultSize is used.
func New(size int, opts ...Option) (*Arena, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidSize, size, MaxSize)
	}
	size &^= Alignment - 1
	if size < MinSize {
		return nil, fmt.Errorf("%w: %d is below %d", ErrInvalidSize, size, MinSize)
	}

	a := &Arena{
		size:    size,
		logger:  critical.DiscardLogger(),
		trap:    critical.PanicTrap,
		section: critical.Noop{},
	}
	for _, opt := range opts {
		opt(a)
	}

	a.words = make([]uint64, (size+7)/8)
	a.buf = unsafe.Slice((*byte)(unsafe.Pointer(&a.words[0])), size)
	a.pages = make([]page, size/Alignment)
	return a, nil
}

// MustNew is like New but panics on error.
func MustNew(size int, opts ...Option) *Arena {
	a, err := New(size, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

var defaultArena = sync.OnceValue(func() *Arena {
	return MustNew(DefaultSize)
})

// Default returns the process-wide arena, creating it on first use.
func Default() *Arena {
	return defaultArena()
}

// init lays out one free page spanning the whole arena, once.
func (a *Arena) init() {
	a.initOnce.Do(a.format)
}

func (a *Arena) format() {
	a.pages[0] = page{size: a.size - HeaderSize, free: true, prev: noPage}
	a.freeSize = a.size - HeaderSize
}

// Alloc reserves n bytes, rounded up to Alignment, and returns the handle of
// the payload. It returns Nil if n <= 0, n > MaxSize, or no free page can
// hold the request.
func (a *Arena) Alloc(n int) Handle {
	a.init()

	if n <= 0 || n > MaxSize {
		a.logger.Debug("alloc rejected", "size", n)
		return Nil
	}
	size := alignUp(n)
	if a.freeSize < size+HeaderSize {
		a.logger.Debug("alloc failed", "size", size, "free", a.freeSize)
		return Nil
	}

	for off := 0; off < a.size; off = a.next(off) {
		p := a.page(off)
		if !p.free || p.size < size {
			continue
		}

		if p.size-size <= HeaderSize {
			// Leftover too small to carry its own page. The page keeps its
			// footprint and freeSize is left alone.
			p.free = false
		} else {
			split := off + HeaderSize + size
			*a.page(split) = page{size: p.size - size - HeaderSize, free: true, prev: off}

			if after := off + HeaderSize + p.size; after < a.size {
				a.page(after).prev = split
			}

			p.size = size
			p.free = false
			a.freeSize -= size + HeaderSize
		}
		return Handle(off + HeaderSize)
	}

	a.logger.Debug("alloc failed: no contiguous page", "size", size, "free", a.freeSize)
	return Nil
}

// Free releases the allocation identified by h and coalesces adjacent free
// pages. Handles outside the arena, and handles that do not name a live
// allocation, are ignored.
func (a *Arena) Free(h Handle) {
	a.init()

	off := int(h)
	if off <= 0 || off >= a.size {
		a.logger.Debug("free ignored: handle outside arena", "handle", off)
		return
	}
	a.defragment(off - HeaderSize)
}

// FreeSize returns the running count of unused bytes. A split allocation
// takes its payload and header out of it, an allocation that takes a whole
// page leaves it as is, and Free puts the page's payload and header back.
// Free bytes may be split across pages, so this is not the largest
// allocatable block.
func (a *Arena) FreeSize() int {
	a.init()
	return a.freeSize
}

// Capacity returns the arena size in bytes.
func (a *Arena) Capacity() int {
	return a.size
}

// MaxAlloc returns the largest request an empty arena can satisfy.
func (a *Arena) MaxAlloc() int {
	return a.size - 2*HeaderSize
}

// Reset returns the arena to a single free page. Every outstanding handle
// and slice becomes invalid.
func (a *Arena) Reset() {
	a.init()
	a.format()
}

// defragment marks the page at target free, provided it is a live
// allocation, then walks the chain backwards from its last page merging
// every free page into a free predecessor.
func (a *Arena) defragment(target int) {
	found := false
	last := 0
	for off := 0; off < a.size; off = a.next(off) {
		if off == target && !a.pages[off/Alignment].free {
			found = true
		}
		last = off
	}
	if !found {
		a.logger.Debug("free ignored: not a live allocation", "page", target)
		return
	}

	tp := a.page(target)
	tp.free = true
	// The whole footprint comes back. Unsplit allocations never took their
	// slack out of freeSize, so the counter is capped at an empty arena.
	a.freeSize = min(a.freeSize+tp.size+HeaderSize, a.size-HeaderSize)

	busy := noPage
	for off := last; off > 0; {
		p := a.page(off)
		if p.prev == noPage {
			a.fail("page at %d has no predecessor", off)
		}
		if !p.free {
			busy = off
			off = p.prev
			continue
		}

		prev := a.page(p.prev)
		if prev.free {
			prev.size += p.size + HeaderSize
			if busy != noPage {
				a.page(busy).prev = p.prev
			}
		}
		off = p.prev
	}
}

// page returns the descriptor of the page starting at off.
func (a *Arena) page(off int) *page {
	if off < 0 || off >= a.size || off%Alignment != 0 {
		a.fail("page offset %d outside arena of %d bytes", off, a.size)
	}
	return &a.pages[off/Alignment]
}

// next returns the offset of the page following the page at off.
func (a *Arena) next(off int) int {
	n := off + HeaderSize + a.page(off).size
	if n > a.size {
		a.fail("page at %d ends at %d, past arena end %d", off, n, a.size)
	}
	return n
}

// lookup reports whether h names a live allocation.
func (a *Arena) lookup(h Handle) (*page, bool) {
	target := int(h) - HeaderSize
	if target < 0 || int(h) >= a.size {
		return nil, false
	}
	for off := 0; off < a.size; off = a.next(off) {
		if off == target {
			p := a.page(off)
			return p, !p.free
		}
		if off > target {
			break
		}
	}
	return nil, false
}

func (a *Arena) fail(format string, args ...any) {
	critical.Fail(a.section, a.trap, a.logger, "arena", format, args...)
}

// alignUp rounds n up to Alignment.
func alignUp(n int) int {
	const mask = Alignment - 1
	return (n + mask) &^ mask
}
