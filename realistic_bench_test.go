package arena

import (
	"fmt"
	"math/rand"
	"testing"
)

// churnSizes is a fixed request mix drawn once so every run replays it.
var churnSizes = func() []int {
	rng := rand.New(rand.NewSource(7))
	sizes := make([]int, 1024)
	for i := range sizes {
		switch rng.Intn(4) {
		case 0:
			sizes[i] = 8 + rng.Intn(24) // small headers and ids
		case 1, 2:
			sizes[i] = 32 + rng.Intn(96) // typical messages
		default:
			sizes[i] = 256 + rng.Intn(768) // bulk payloads
		}
	}
	return sizes
}()

// BenchmarkPageChurn keeps a sliding window of live buffers in a 64 KiB
// arena. Old buffers are freed in arrival order, so freed pages coalesce
// with their neighbours while newer pages are still live.
func BenchmarkPageChurn(b *testing.B) {
	for _, window := range []int{8, 32, 128} {
		b.Run(fmt.Sprintf("Arena/window-%d", window), func(b *testing.B) {
			a := MustNew(MaxSize)
			live := make([][]byte, 0, window)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if len(live) == window {
					a.FreeBytes(live[0])
					live = live[1:]
				}
				if buf := a.AllocBytes(churnSizes[i%len(churnSizes)]); buf != nil {
					buf[0] = byte(i)
					live = append(live, buf)
				}
			}
		})

		b.Run(fmt.Sprintf("Builtin/window-%d", window), func(b *testing.B) {
			live := make([][]byte, 0, window)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if len(live) == window {
					live = live[1:]
				}
				buf := make([]byte, churnSizes[i%len(churnSizes)])
				buf[0] = byte(i)
				live = append(live, buf)
			}
		})
	}
}

// BenchmarkCoalescing fills the arena with small pages and frees them all,
// front to back and back to front. Freeing back to front merges each page
// into its predecessor immediately; front to back leaves the merge to the
// last free.
func BenchmarkCoalescing(b *testing.B) {
	const size = 4096
	orders := map[string]func(hs []Handle, i int) Handle{
		"Forward": func(hs []Handle, i int) Handle { return hs[i] },
		"Reverse": func(hs []Handle, i int) Handle { return hs[len(hs)-1-i] },
	}

	for name, pick := range orders {
		b.Run(name, func(b *testing.B) {
			a := MustNew(size)
			hs := make([]Handle, 0, size/HeaderSize)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				hs = hs[:0]
				for h := a.Alloc(16); h != Nil; h = a.Alloc(16) {
					hs = append(hs, h)
				}
				for j := range hs {
					a.Free(pick(hs, j))
				}
			}
		})
	}
}

// BenchmarkFragmentedFirstFit leaves every other page allocated so a request
// that only the tail page can serve scans the whole chain.
func BenchmarkFragmentedFirstFit(b *testing.B) {
	a := MustNew(MaxSize)
	var hs []Handle
	for i := 0; i < 256; i++ {
		hs = append(hs, a.Alloc(64))
	}
	for i := 0; i < len(hs); i += 2 {
		a.Free(hs[i])
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		a.Free(a.Alloc(128))
	}
}

// BenchmarkScopedRequest models a request handler taking short-lived
// scratch space from one shared arena.
func BenchmarkScopedRequest(b *testing.B) {
	type frame struct {
		Seq     uint32
		Len     uint16
		Payload [58]byte
	}

	b.Run("Arena", func(b *testing.B) {
		s, _ := NewSafeArena(MaxSize)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = WithScoped(s, 16, func(frames []frame) error {
				frames[0].Seq = uint32(i)
				frames[15].Len = uint16(len(frames))
				return nil
			})
		}
	})

	b.Run("Builtin", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			frames := make([]frame, 16)
			frames[0].Seq = uint32(i)
			frames[15].Len = uint16(len(frames))
		}
	})
}
