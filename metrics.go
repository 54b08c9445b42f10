package arena

// PageInfo describes one page of the chain.
type PageInfo struct {
	Offset int  // offset of the page header
	Size   int  // payload bytes
	Free   bool // not handed out
	Prev   int  // offset of the preceding page, -1 for the first
}

// Pages returns the page chain in address order.
func (a *Arena) Pages() []PageInfo {
	a.init()
	var out []PageInfo
	for off := 0; off < a.size; off = a.next(off) {
		p := a.page(off)
		out = append(out, PageInfo{Offset: off, Size: p.size, Free: p.free, Prev: p.prev})
	}
	return out
}

// SizeInUse returns the bytes held by live allocations, headers included.
func (a *Arena) SizeInUse() int {
	sum := 0
	for _, p := range a.Pages() {
		if !p.Free {
			sum += p.Size + HeaderSize
		}
	}
	return sum
}

// NumPages returns the number of pages in the chain.
func (a *Arena) NumPages() int {
	return len(a.Pages())
}

// NumFreePages returns the number of free pages in the chain.
func (a *Arena) NumFreePages() int {
	n := 0
	for _, p := range a.Pages() {
		if p.Free {
			n++
		}
	}
	return n
}

// LargestFree returns the payload size of the largest free page.
func (a *Arena) LargestFree() int {
	largest := 0
	for _, p := range a.Pages() {
		if p.Free && p.Size > largest {
			largest = p.Size
		}
	}
	return largest
}

// CanAlloc reports whether Alloc(n) would currently succeed.
func (a *Arena) CanAlloc(n int) bool {
	if n <= 0 || n > MaxSize {
		return false
	}
	size := alignUp(n)
	if a.FreeSize() < size+HeaderSize {
		return false
	}
	return a.LargestFree() >= size
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
func (a *Arena) Utilization() float64 {
	return float64(a.SizeInUse()) / float64(a.size)
}

// FreePayload returns the payload bytes of the pages currently marked free.
// Unlike FreeSize it is recomputed from the chain.
func (a *Arena) FreePayload() int {
	sum := 0
	for _, p := range a.Pages() {
		if p.Free {
			sum += p.Size
		}
	}
	return sum
}

// Fragmentation returns 1 - LargestFree/FreePayload: 0 when all free bytes
// are in one page, approaching 1 as they scatter.
func (a *Arena) Fragmentation() float64 {
	free := a.FreePayload()
	if free == 0 {
		return 0
	}
	return 1 - float64(a.LargestFree())/float64(free)
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	m := ArenaMetrics{
		Capacity: a.size,
		FreeSize: a.FreeSize(),
	}
	for _, p := range a.Pages() {
		m.NumPages++
		if p.Free {
			m.NumFreePages++
			m.FreePayload += p.Size
			if p.Size > m.LargestFree {
				m.LargestFree = p.Size
			}
			continue
		}
		m.SizeInUse += p.Size + HeaderSize
	}
	m.Utilization = float64(m.SizeInUse) / float64(m.Capacity)
	if m.FreePayload > 0 {
		m.Fragmentation = 1 - float64(m.LargestFree)/float64(m.FreePayload)
	}
	return m
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	Capacity      int     // Arena size in bytes
	SizeInUse     int     // Bytes held by live allocations, headers included
	FreeSize      int     // Running unused-byte count, see Arena.FreeSize
	FreePayload   int     // Payload bytes of free pages
	LargestFree   int     // Payload bytes of the largest free page
	NumPages      int     // Pages in the chain
	NumFreePages  int     // Free pages in the chain
	Utilization   float64 // SizeInUse / Capacity
	Fragmentation float64 // 1 - LargestFree/FreePayload
}
