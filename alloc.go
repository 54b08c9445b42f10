package arena

import "unsafe"

// Allocator is the allocation surface shared by Arena and SafeArena.
type Allocator interface {
	Alloc(n int) Handle
	Free(h Handle)
	FreeBytes(b []byte)
	Bytes(h Handle) []byte
}

var (
	_ Allocator = (*Arena)(nil)
	_ Allocator = (*SafeArena)(nil)
)

// SizeOf returns the bytes needed for n elements of T, or -1 if n is
// negative or the total exceeds MaxSize.
func SizeOf[T any](n int) int {
	var zero T
	elem := int(unsafe.Sizeof(zero))
	if n < 0 || (elem > 0 && n > MaxSize/elem) {
		return -1
	}
	return elem * n
}

// The typed helpers below view arena bytes as T. T must not contain Go
// pointers: the garbage collector does not scan arena memory.

// Alloc returns a zeroed *T stored inside the arena, or nil if the arena
// cannot hold it.
func Alloc[T any](al Allocator) *T {
	s := AllocSliceZeroed[T](al, 1)
	if s == nil {
		return nil
	}
	return &s[0]
}

// AllocUninitialized returns a *T without zeroing memory. The contents are
// whatever the page held before.
func AllocUninitialized[T any](al Allocator) *T {
	s := AllocSlice[T](al, 1)
	if s == nil {
		return nil
	}
	return &s[0]
}

// AllocSlice allocates n elements of T inside the arena. The elements are
// not initialized. Returns nil if n <= 0 or the arena cannot hold them.
func AllocSlice[T any](al Allocator, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	if unsafe.Alignof(zero) > uintptr(Alignment) {
		return nil
	}
	size := SizeOf[T](n)
	if size < 0 {
		return nil
	}
	if size == 0 {
		// Zero-size elements still take a page so Free has something to release.
		size = 1
	}
	b := al.Bytes(al.Alloc(size))
	if b == nil {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// AllocSliceZeroed allocates n zeroed elements of T inside the arena.
func AllocSliceZeroed[T any](al Allocator, n int) []T {
	s := AllocSlice[T](al, n)
	clear(s)
	return s
}

// Free releases an allocation obtained from Alloc or AllocUninitialized.
// Pointers outside the arena are ignored.
func Free[T any](al Allocator, p *T) {
	if p == nil {
		return
	}
	al.FreeBytes(unsafe.Slice((*byte)(unsafe.Pointer(p)), 1))
}

// FreeSlice releases an allocation obtained from AllocSlice or
// AllocSliceZeroed. Slices outside the arena are ignored.
func FreeSlice[T any](al Allocator, s []T) {
	if s == nil {
		return
	}
	al.FreeBytes(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), 1))
}
