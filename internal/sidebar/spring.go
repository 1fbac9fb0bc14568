package sidebar

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// SpringConfig is a unit-mass spring.
type SpringConfig struct {
	Stiffness float64
	Damping   float64
	FPS       int
}

var DefaultSpringConfig = SpringConfig{Stiffness: 500, Damping: 32, FPS: 60}

const settleEpsilon = 0.01

// minDampingRatio keeps a spring from oscillating forever.
const minDampingRatio = 0.1

func (c SpringConfig) frame() time.Duration {
	fps := c.FPS
	if fps <= 0 {
		fps = DefaultSpringConfig.FPS
	}
	return time.Second / time.Duration(fps)
}

// harmonica takes angular frequency and damping ratio rather than k and c.
func (c SpringConfig) params() (angularFreq, dampingRatio float64) {
	k := c.Stiffness
	if k <= 0 {
		k = DefaultSpringConfig.Stiffness
	}
	angularFreq = math.Sqrt(k)
	dampingRatio = math.Max(c.Damping/(2*angularFreq), minDampingRatio)
	return angularFreq, dampingRatio
}

// Spring moves a scalar toward a target. Retargeting keeps position and
// velocity.
type Spring struct {
	pos, vel, target float64

	freq, ratio float64
	frameDelta  time.Duration
	frame       harmonica.Spring
}

// NewSpring returns a spring at rest on pos.
func NewSpring(cfg SpringConfig, pos float64) *Spring {
	freq, ratio := cfg.params()
	delta := cfg.frame()
	return &Spring{
		pos:        pos,
		target:     pos,
		freq:       freq,
		ratio:      ratio,
		frameDelta: delta,
		frame:      harmonica.NewSpring(delta.Seconds(), freq, ratio),
	}
}

func (s *Spring) SetTarget(target float64) { s.target = target }

func (s *Spring) Target() float64 { return s.target }

func (s *Spring) Position() float64 { return s.pos }

func (s *Spring) Velocity() float64 { return s.vel }

// Settled reports whether the spring is at rest on its target.
func (s *Spring) Settled() bool {
	return s.pos == s.target && s.vel == 0
}

// Step advances one frame.
func (s *Spring) Step() {
	if s.Settled() {
		return
	}
	s.pos, s.vel = s.frame.Update(s.pos, s.vel, s.target)
	s.snap()
}

// Advance integrates over an arbitrary dt.
func (s *Spring) Advance(dt time.Duration) {
	if dt <= 0 || s.Settled() {
		return
	}
	if dt == s.frameDelta {
		s.Step()
		return
	}
	sp := harmonica.NewSpring(dt.Seconds(), s.freq, s.ratio)
	s.pos, s.vel = sp.Update(s.pos, s.vel, s.target)
	s.snap()
}

func (s *Spring) snap() {
	if math.Abs(s.pos-s.target) < settleEpsilon && math.Abs(s.vel) < settleEpsilon {
		s.pos = s.target
		s.vel = 0
	}
}

// Animator keeps one spring per category id, targeting index*rowHeight.
type Animator struct {
	cfg       SpringConfig
	rowHeight float64
	springs   map[string]*Spring
	stopped   bool
}

func NewAnimator(cfg SpringConfig, rowHeight float64) *Animator {
	return &Animator{
		cfg:       cfg,
		rowHeight: rowHeight,
		springs:   make(map[string]*Spring),
	}
}

// RowHeight is the distance between neighbouring row targets.
func (a *Animator) RowHeight() float64 { return a.rowHeight }

// FrameInterval is the configured time between ticks.
func (a *Animator) FrameInterval() time.Duration { return a.cfg.frame() }

// Sync retargets springs to the current order. Unknown ids start at rest
// on their target; ids no longer present are dropped.
func (a *Animator) Sync(ids []string) {
	if a.stopped {
		return
	}

	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		seen[id] = struct{}{}
		target := float64(i) * a.rowHeight
		if s, ok := a.springs[id]; ok {
			s.SetTarget(target)
			continue
		}
		a.springs[id] = NewSpring(a.cfg, target)
	}

	for id := range a.springs {
		if _, ok := seen[id]; !ok {
			delete(a.springs, id)
		}
	}
}

// Offset returns the current animated y for id.
func (a *Animator) Offset(id string) float64 {
	if s, ok := a.springs[id]; ok {
		return s.Position()
	}
	return 0
}

func (a *Animator) Spring(id string) (*Spring, bool) {
	s, ok := a.springs[id]
	return s, ok
}

// Tick advances every spring by one frame and reports whether any is
// still moving.
func (a *Animator) Tick() bool {
	if a.stopped {
		return false
	}
	for _, s := range a.springs {
		s.Step()
	}
	return a.Animating()
}

// Advance integrates every spring over dt.
func (a *Animator) Advance(dt time.Duration) bool {
	if a.stopped {
		return false
	}
	for _, s := range a.springs {
		s.Advance(dt)
	}
	return a.Animating()
}

func (a *Animator) Animating() bool {
	for _, s := range a.springs {
		if !s.Settled() {
			return true
		}
	}
	return false
}

func (a *Animator) Len() int { return len(a.springs) }

// Start re-enables an animator after Stop.
func (a *Animator) Start() { a.stopped = false }

// Stop drops every spring and ignores further ticks until Start.
func (a *Animator) Stop() {
	a.stopped = true
	a.springs = make(map[string]*Spring)
}
