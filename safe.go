package arena

import (
	"sync"
	"unsafe"
)

// SafeArena serializes every operation on an Arena through a section, for
// hosts where more than one goroutine allocates from the same arena.
type SafeArena struct {
	mu sync.Locker
	a  *Arena
}

// NewSafeArena creates an arena of size bytes guarded by a *sync.Mutex.
// If size <= 0, DefaultSize is used.
func NewSafeArena(size int, opts ...Option) (*SafeArena, error) {
	a, err := New(size, opts...)
	if err != nil {
		return nil, err
	}
	return Guard(a, nil), nil
}

// Guard wraps a with sec. A nil sec selects a *sync.Mutex. a must not be
// used directly afterwards.
func Guard(a *Arena, sec sync.Locker) *SafeArena {
	if sec == nil {
		sec = &sync.Mutex{}
	}
	return &SafeArena{mu: sec, a: a}
}

// Alloc thread-safely reserves n bytes.
func (s *SafeArena) Alloc(n int) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(n)
}

// Free thread-safely releases h.
func (s *SafeArena) Free(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Free(h)
}

// AllocBytes thread-safely allocates n bytes and returns a slice pointing to them.
func (s *SafeArena) AllocBytes(n int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.AllocBytes(n)
}

// FreeBytes thread-safely releases the allocation starting at b[0].
func (s *SafeArena) FreeBytes(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.FreeBytes(b)
}

// Bytes thread-safely returns the payload of h.
func (s *SafeArena) Bytes(h Handle) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Bytes(h)
}

// Contains reports whether p points strictly inside the arena.
func (s *SafeArena) Contains(p unsafe.Pointer) bool {
	return s.a.Contains(p)
}

// Reset thread-safely returns the arena to a single free page.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// FreeSize thread-safely returns the payload bytes of free pages.
func (s *SafeArena) FreeSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.FreeSize()
}

// CanAlloc thread-safely reports whether Alloc(n) would succeed.
func (s *SafeArena) CanAlloc(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.CanAlloc(n)
}

// Capacity returns the arena size in bytes.
func (s *SafeArena) Capacity() int {
	return s.a.Capacity()
}

// SizeInUse thread-safely returns the bytes held by live allocations.
func (s *SafeArena) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

// Utilization thread-safely returns the ratio of bytes in use to capacity.
func (s *SafeArena) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Utilization()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}

// Pages thread-safely returns the page chain.
func (s *SafeArena) Pages() []PageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Pages()
}
