package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	allowed := map[State]map[Event]State{
		Empty:   {Push: Visible, PushHidden: Hidden},
		Hidden:  {Push: Visible, PushHidden: Hidden, Unhide: Visible},
		Visible: {Push: Visible, PushHidden: Hidden, ShadowRead: Visited, Pop: Empty},
		Visited: {Push: Visible, PushHidden: Hidden, ShadowRead: Visited, Pop: Empty, PopIfVisited: Empty},
	}

	for s := Empty; s < numStates; s++ {
		for e := Push; e < numEvents; e++ {
			t.Run(s.String()+"/"+e.String(), func(t *testing.T) {
				got, ok := Next(s, e)
				want, allow := allowed[s][e]
				assert.Equal(t, allow, ok)
				if allow {
					assert.Equal(t, want, got)
				} else {
					assert.Equal(t, s, got, "refused transition must keep the state")
				}
			})
		}
	}
}

func TestNextOutOfRange(t *testing.T) {
	_, ok := Next(numStates, Push)
	assert.False(t, ok)
	_, ok = Next(Visible, numEvents)
	assert.False(t, ok)
	assert.Equal(t, "invalid", numStates.String())
	assert.Equal(t, "invalid", numEvents.String())
}

func TestEncodeDecode(t *testing.T) {
	meta := make([]byte, MetaSize)

	for _, s := range []State{Hidden, Visible, Visited} {
		encode(meta, s)
		assert.Equal(t, s, decode(meta), "state %s", s)
	}

	// A retired slot keeps no visited mark for the next push.
	encode(meta, Visited)
	encode(meta, Empty)
	assert.Zero(t, meta[metaVisited])
	assert.Zero(t, meta[metaHidden])
}

func TestStride(t *testing.T) {
	tests := []struct {
		slot, align, want int
	}{
		{0, 1, 2},
		{1, 1, 3},
		{4, 4, 8},
		{6, 2, 8},
		{8, 8, 16},
		{14, 8, 16},
		{3, 0, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stride(tt.slot, tt.align), "Stride(%d, %d)", tt.slot, tt.align)
	}
}
