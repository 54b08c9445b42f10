package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaMetrics(t *testing.T) {
	a := MustNew(1024)

	// Initial state
	assert.Zero(t, a.SizeInUse())
	assert.Equal(t, 1, a.NumPages())
	assert.Equal(t, 1, a.NumFreePages())
	assert.Equal(t, 1024, a.Capacity())
	assert.Zero(t, a.Utilization())
	assert.Zero(t, a.Fragmentation())
	assert.Equal(t, 1024-HeaderSize, a.LargestFree())
	assert.Equal(t, 1024-HeaderSize, a.FreePayload())

	h1 := a.Alloc(96)
	a.Alloc(200)
	assert.Equal(t, 96+200+2*HeaderSize, a.SizeInUse())

	u := a.Utilization()
	assert.Greater(t, u, 0.0)
	assert.LessOrEqual(t, u, 1.0)

	// A hole in front of the tail free page fragments the free space.
	a.Free(h1)
	assert.Equal(t, 2, a.NumFreePages())
	assert.Equal(t, 96+a.LargestFree(), a.FreePayload())
	assert.InDelta(t, 96/float64(a.FreePayload()), a.Fragmentation(), 1e-9)

	m := a.Metrics()
	assert.Equal(t, ArenaMetrics{
		Capacity:      a.Capacity(),
		SizeInUse:     a.SizeInUse(),
		FreeSize:      a.FreeSize(),
		FreePayload:   a.FreePayload(),
		LargestFree:   a.LargestFree(),
		NumPages:      a.NumPages(),
		NumFreePages:  a.NumFreePages(),
		Utilization:   a.Utilization(),
		Fragmentation: a.Fragmentation(),
	}, m)
}

func TestArenaMetricsAfterReset(t *testing.T) {
	a := MustNew(1024)

	a.AllocBytes(500)
	require.NotZero(t, a.SizeInUse())
	require.NotZero(t, a.Utilization())

	a.Reset()
	assert.Zero(t, a.SizeInUse())
	assert.Zero(t, a.Utilization())
	assert.Equal(t, 1, a.NumPages())
}

func TestCanAlloc(t *testing.T) {
	a := MustNew(256)

	assert.False(t, a.CanAlloc(0))
	assert.False(t, a.CanAlloc(-4))
	assert.False(t, a.CanAlloc(MaxSize+1))
	assert.True(t, a.CanAlloc(a.MaxAlloc()))
	assert.False(t, a.CanAlloc(a.MaxAlloc()+1))

	// CanAlloc must agree with Alloc.
	for n := 1; n < 256; n += 7 {
		want := a.CanAlloc(n)
		h := a.Alloc(n)
		assert.Equal(t, want, h != Nil, "CanAlloc(%d)", n)
		a.Free(h)
	}
}

func TestPages(t *testing.T) {
	a := MustNew(1024)
	h := a.Alloc(40)
	require.NotEqual(t, Nil, h)

	pages := a.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, PageInfo{Offset: 0, Size: alignUp(40), Free: false, Prev: -1}, pages[0])
	assert.Equal(t, HeaderSize+alignUp(40), pages[1].Offset)
	assert.True(t, pages[1].Free)
	assert.Equal(t, 0, pages[1].Prev)
}
