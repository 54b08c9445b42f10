package arena

import "fmt"

// noCopy lets go vet's copylocks check flag copies of Scoped.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Scoped owns a single arena allocation of n elements of T from Acquire until
// Release. Release is idempotent; pair Acquire with defer Release.
//
//	s := arena.Acquire[uint16](a, 10)
//	defer s.Release()
//	if !s.Ok() {
//		return
//	}
//	*s.At(0) = 1
type Scoped[T any] struct {
	_     noCopy
	al    Allocator
	elems []T
}

// Acquire allocates n elements of T. On failure the returned Scoped is not
// Ok and Release is a no-op.
func Acquire[T any](al Allocator, n int) *Scoped[T] {
	return &Scoped[T]{al: al, elems: AllocSlice[T](al, n)}
}

// Ok reports whether the allocation succeeded and has not been released.
func (s *Scoped[T]) Ok() bool {
	return s.elems != nil
}

// Len returns the number of elements, 0 if not Ok.
func (s *Scoped[T]) Len() int {
	return len(s.elems)
}

// At returns a pointer to element i. It panics if i is out of range.
func (s *Scoped[T]) At(i int) *T {
	return &s.elems[i]
}

// Ptr returns a pointer to the first element, or nil if not Ok.
func (s *Scoped[T]) Ptr() *T {
	if s.elems == nil {
		return nil
	}
	return &s.elems[0]
}

// Slice returns the elements. The slice is invalid after Release.
func (s *Scoped[T]) Slice() []T {
	return s.elems
}

// Release returns the allocation to the arena. Calls after the first do nothing.
func (s *Scoped[T]) Release() {
	if s.elems == nil {
		return
	}
	FreeSlice(s.al, s.elems)
	s.elems = nil
}

// WithScoped acquires n elements of T, runs fn with them, and releases them
// when fn returns or panics. It returns ErrOutOfMemory without calling fn if
// the allocation fails.
func WithScoped[T any](al Allocator, n int, fn func(elems []T) error) error {
	s := Acquire[T](al, n)
	defer s.Release()
	if !s.Ok() {
		return fmt.Errorf("%w: %d elements of %d bytes", ErrOutOfMemory, n, SizeOf[T](1))
	}
	return fn(s.Slice())
}
