package critical

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestInterrupts(t *testing.T) {
	var disabled, enabled int
	sec := Interrupts{
		Disable: func() { disabled++ },
		Enable:  func() { enabled++ },
	}

	Do(sec, func() {
		assert.Equal(t, 1, disabled)
		assert.Zero(t, enabled, "section must stay open while fn runs")
	})
	assert.Equal(t, 1, enabled)

	// Missing hooks are tolerated.
	assert.NotPanics(t, func() { Do(Interrupts{}, func() {}) })
}

func TestDoUnlocksOnPanic(t *testing.T) {
	var mu sync.Mutex
	assert.Panics(t, func() {
		Do(&mu, func() { panic("boom") })
	})
	assert.True(t, mu.TryLock(), "section must be released after a panic")
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, Noop{}, OrNoop(nil))

	var mu sync.Mutex
	assert.Same(t, &mu, OrNoop(&mu))
}

func TestSpin(t *testing.T) {
	var s Spin

	require.True(t, s.TryLock())
	assert.False(t, s.TryLock(), "held section must refuse TryLock")
	s.Unlock()
	assert.True(t, s.TryLock())
	s.Unlock()

	assert.PanicsWithValue(t, "critical: unlock of unlocked Spin", func() { s.Unlock() })
}

func TestSpinExcludes(t *testing.T) {
	var (
		s     Spin
		count int
		g     errgroup.Group
	)

	const workers, rounds = 8, 1000
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < rounds; j++ {
				Do(&s, func() { count++ })
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, workers*rounds, count)
}

func BenchmarkSections(b *testing.B) {
	b.Run("Noop", func(b *testing.B) {
		var sec sync.Locker = Noop{}
		for i := 0; i < b.N; i++ {
			sec.Lock()
			sec.Unlock()
		}
	})

	b.Run("Spin", func(b *testing.B) {
		var s Spin
		for i := 0; i < b.N; i++ {
			s.Lock()
			s.Unlock()
		}
	})

	b.Run("Mutex", func(b *testing.B) {
		var mu sync.Mutex
		for i := 0; i < b.N; i++ {
			mu.Lock()
			mu.Unlock()
		}
	})
}
