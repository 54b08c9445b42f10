package arena

import "unsafe"

// Bytes returns the payload of the live allocation h. The slice covers the
// whole page, which may be longer than the request. It returns nil if h does
// not name a live allocation.
func (a *Arena) Bytes(h Handle) []byte {
	a.init()
	p, ok := a.lookup(h)
	if !ok {
		return nil
	}
	start := int(h)
	return a.buf[start : start+p.size : start+p.size]
}

// AllocBytes returns an n-byte slice carved from the arena, or nil if the
// request cannot be satisfied. Release it with FreeBytes.
func (a *Arena) AllocBytes(n int) []byte {
	h := a.Alloc(n)
	if h == Nil {
		return nil
	}
	start := int(h)
	return a.buf[start : start+n : start+n]
}

// FreeBytes releases the allocation whose payload starts at b[0]. Slices that
// do not point strictly inside the arena are ignored.
func (a *Arena) FreeBytes(b []byte) {
	a.Free(a.handleOf(unsafe.Pointer(unsafe.SliceData(b))))
}

// Contains reports whether p points strictly inside the arena.
func (a *Arena) Contains(p unsafe.Pointer) bool {
	return a.handleOf(p) != Nil
}

// handleOf maps an address to the handle at that offset, or Nil.
func (a *Arena) handleOf(p unsafe.Pointer) Handle {
	if p == nil {
		return Nil
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
	addr := uintptr(p)
	if addr <= base || addr >= base+uintptr(a.size) {
		return Nil
	}
	return Handle(addr - base)
}
