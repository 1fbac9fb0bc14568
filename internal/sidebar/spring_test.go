package sidebar

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpringFirstFrameIsBetween(t *testing.T) {
	a := NewAnimator(DefaultSpringConfig, 80)
	a.Sync([]string{"a", "b", "c"})
	require.Equal(t, 160.0, a.Offset("c"))

	a.Sync([]string{"c", "a", "b"})
	assert.Equal(t, 160.0, a.Offset("c"), "retargeting must not snap")

	a.Tick()
	y := a.Offset("c")
	assert.Greater(t, y, 0.0)
	assert.Less(t, y, 160.0)
}

func TestSpringConverges(t *testing.T) {
	s := NewSpring(DefaultSpringConfig, 160)
	s.SetTarget(0)

	for i := 0; i < 600 && !s.Settled(); i++ {
		s.Step()
	}

	assert.True(t, s.Settled())
	assert.Equal(t, 0.0, s.Position())
	assert.Equal(t, 0.0, s.Velocity())
}

func TestSpringWithoutDampingStillSettles(t *testing.T) {
	a := NewAnimator(SpringConfig{Stiffness: 500, Damping: 0, FPS: 60}, 80)
	a.Sync([]string{"a", "b", "c"})
	a.Sync([]string{"c", "a", "b"})

	for i := 0; i < 60*30 && a.Animating(); i++ {
		a.Tick()
	}

	assert.False(t, a.Animating())
	assert.Equal(t, 0.0, a.Offset("c"))
	assert.Equal(t, 160.0, a.Offset("b"))
}

func TestSpringRetargetKeepsVelocity(t *testing.T) {
	s := NewSpring(DefaultSpringConfig, 160)
	s.SetTarget(0)
	s.Step()
	s.Step()

	pos, vel := s.Position(), s.Velocity()
	require.Less(t, vel, 0.0)

	s.SetTarget(80)
	assert.Equal(t, pos, s.Position())
	assert.Equal(t, vel, s.Velocity())
}

func TestSpringAdvanceSyntheticDelta(t *testing.T) {
	stepped := NewSpring(DefaultSpringConfig, 160)
	stepped.SetTarget(0)
	stepped.Step()

	advanced := NewSpring(DefaultSpringConfig, 160)
	advanced.SetTarget(0)
	advanced.Advance(time.Second / 60)

	assert.InDelta(t, stepped.Position(), advanced.Position(), 1e-9)

	longer := NewSpring(DefaultSpringConfig, 160)
	longer.SetTarget(0)
	longer.Advance(50 * time.Millisecond)
	assert.Less(t, longer.Position(), stepped.Position())

	idle := NewSpring(DefaultSpringConfig, 10)
	idle.Advance(0)
	assert.Equal(t, 10.0, idle.Position())
}

func TestSpringParams(t *testing.T) {
	freq, ratio := DefaultSpringConfig.params()

	assert.InDelta(t, math.Sqrt(500), freq, 1e-9)
	assert.InDelta(t, 32/(2*math.Sqrt(500)), ratio, 1e-9)
	assert.Equal(t, time.Second/60, DefaultSpringConfig.frame())
	assert.Equal(t, time.Second/60, SpringConfig{}.frame())
}

func TestAnimatorNewRowsStartAtRest(t *testing.T) {
	a := NewAnimator(DefaultSpringConfig, 80)
	a.Sync([]string{"a"})
	a.Sync([]string{"a", "b"})

	assert.Equal(t, 80.0, a.Offset("b"))
	assert.False(t, a.Animating())
}

func TestAnimatorDropsRemovedRows(t *testing.T) {
	a := NewAnimator(DefaultSpringConfig, 80)
	a.Sync([]string{"a", "b"})
	a.Sync([]string{"b"})

	assert.Equal(t, 1, a.Len())
	assert.True(t, a.Animating())

	_, ok := a.Spring("a")
	assert.False(t, ok)
}

func TestAnimatorStop(t *testing.T) {
	a := NewAnimator(DefaultSpringConfig, 80)
	a.Sync([]string{"a", "b"})
	a.Sync([]string{"b", "a"})
	require.True(t, a.Animating())

	a.Stop()

	assert.Zero(t, a.Len())
	assert.False(t, a.Tick())
	assert.False(t, a.Advance(time.Second))
	a.Sync([]string{"a"})
	assert.Zero(t, a.Len())

	a.Start()
	a.Sync([]string{"a"})
	assert.Equal(t, 1, a.Len())
}
