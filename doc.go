// Package arena implements a fixed-size static heap for targets that cannot
// rely on a general-purpose allocator.
//
// # Overview
//
// An Arena is one byte region, sized once at construction (at most 64 KiB),
// that is lazily divided into a chain of pages. Each page carries a payload
// size, a free flag and a link to the page before it. Allocation is a
// first-fit scan of the chain that splits the chosen page when the leftover
// can carry its own header; Free marks the page free and merges runs of free
// pages into their free predecessor. The arena never grows.
//
// # Basic Usage
//
//	a, err := arena.New(4096)
//	if err != nil {
//		return err
//	}
//
//	// Raw bytes
//	buf := a.AllocBytes(128)
//	defer a.FreeBytes(buf)
//
//	// Typed values
//	ptr := arena.Alloc[MyStruct](a)
//	defer arena.Free(a, ptr)
//	vals := arena.AllocSlice[uint16](a, 10)
//	defer arena.FreeSlice(a, vals)
//
//	// Scoped release
//	s := arena.Acquire[uint32](a, 8)
//	defer s.Release()
//
// Failures are values: a Nil handle, a nil slice or pointer. Freeing
// something the arena did not hand out is silently ignored.
//
// # Thread Safety
//
// Arena does no locking. Callers sharing one between goroutines either
// serialize Alloc and Free themselves or use SafeArena:
//
//	s, _ := arena.NewSafeArena(0)
//	buf := s.AllocBytes(64)
//
// # Memory Layout
//
// Every page is charged HeaderSize bytes of overhead and payloads are
// rounded up to Alignment. The page descriptors live in a table beside the
// payload bytes, indexed by page offset, so payload writes can never corrupt
// the chain. FreeSize is a running count: a split allocation takes its
// payload and header out, an allocation that takes a whole page leaves it
// alone, and Free puts the page's payload and header back. It is not the
// largest allocatable block (see LargestFree, FreePayload and CanAlloc).
//
// # Invariant Violations
//
// If a walk of the chain ever leaves the arena, the arena enters its section
// and fires its trap (see package critical). The default trap panics.
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Fragmentation: %.2f\n", m.Fragmentation)
package arena
