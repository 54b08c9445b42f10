package ring

import (
	"unsafe"

	arena "github.com/pavanmanishd/staticarena"
)

// Ring is a FIFO of T backed by one allocation from an arena. T must not
// contain Go pointers.
type Ring[T any] struct {
	al     arena.Allocator
	handle arena.Handle
	e      *Engine
}

// New allocates a ring of capacity elements of T from al. If infinite is
// set, a push to a full ring discards the oldest element instead of failing.
// Allocation failure is not an error: check IsGood.
func New[T any](al arena.Allocator, capacity int, infinite bool, opts ...Option) *Ring[T] {
	var zero T
	size := int(unsafe.Sizeof(zero))
	align := int(unsafe.Alignof(zero))
	stride := Stride(size, align)

	r := &Ring[T]{al: al}

	var buf []byte
	if capacity >= 1 && capacity <= MaxCapacity && align <= arena.Alignment && capacity <= arena.MaxSize/stride {
		total := capacity * stride
		r.handle = al.Alloc(total)
		if b := al.Bytes(r.handle); b != nil {
			buf = b[:total]
		}
	}
	r.e = NewEngine(buf, size, stride, capacity, infinite, opts...)
	return r
}

// IsGood reports whether the backing allocation succeeded and the ring has
// not been closed.
func (r *Ring[T]) IsGood() bool {
	return r.e.IsGood()
}

// Close returns the backing storage to the arena. Every later operation fails.
// Close may overlap the producer, owner and readers, but not another Close.
// Pointers from ReadShadowPtr must not be used once Close has started.
func (r *Ring[T]) Close() {
	if r.handle == arena.Nil {
		return
	}
	r.e.detach()
	r.al.Free(r.handle)
	r.handle = arena.Nil
}

// Count returns the number of live elements.
func (r *Ring[T]) Count() int {
	return r.e.Count()
}

// Capacity returns the number of slots.
func (r *Ring[T]) Capacity() int {
	return r.e.Capacity()
}

// Reset empties the ring.
func (r *Ring[T]) Reset() {
	r.e.Reset()
}

// Push appends v.
func (r *Ring[T]) Push(v T) bool {
	return r.e.Push(bytesOf(&v), false)
}

// PushHidden appends v hidden from Pop and shadow reads until UnhideIfHidden.
func (r *Ring[T]) PushHidden(v T) bool {
	return r.e.Push(bytesOf(&v), true)
}

// Pop removes the oldest element into out, or discards it if out is nil.
func (r *Ring[T]) Pop(out *T) bool {
	if out == nil {
		return r.e.Pop(nil)
	}
	return r.e.Pop(bytesOf(out))
}

// ReadShadow copies the oldest element into out without removing it.
func (r *Ring[T]) ReadShadow(out *T) bool {
	if out == nil {
		return false
	}
	return r.e.ReadShadow(bytesOf(out))
}

// ReadShadowPtr returns the oldest element in place, or nil. The element must
// not be modified through the pointer.
func (r *Ring[T]) ReadShadowPtr() *T {
	b := r.e.ReadShadowBytes()
	if b == nil {
		return nil
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}

// PopIfVisited removes the oldest element if it has been shadow read.
func (r *Ring[T]) PopIfVisited() bool {
	return r.e.PopIfVisited()
}

// IsNodeVisited reports whether the oldest element has been shadow read.
func (r *Ring[T]) IsNodeVisited() bool {
	return r.e.IsNodeVisited()
}

// UnhideIfHidden reveals the oldest element if it is hidden.
func (r *Ring[T]) UnhideIfHidden() bool {
	return r.e.UnhideIfHidden()
}

// Stats returns the activity counters.
func (r *Ring[T]) Stats() Stats {
	return r.e.Stats()
}

func bytesOf[T any](p *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), unsafe.Sizeof(*p))
}
