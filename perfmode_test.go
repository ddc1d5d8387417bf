package framegov

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modeRecorder is a consumer with a controllable execution cost that records
// every performance-mode notification it receives.
type modeRecorder struct {
	wall  *fakeWall
	cost  time.Duration
	runs  int
	modes []Mode
}

func (m *modeRecorder) Tick(FrameContext) {
	m.wall.Advance(m.cost)
	m.runs++
}

func (m *modeRecorder) OnPerformanceModeChange(mode Mode) {
	m.modes = append(m.modes, mode)
}

func TestModeHysteresis(t *testing.T) {
	s, src, wall := newTestScheduler(t)
	defer s.Destroy()

	// 25ms ticks blow both thresholds: avg frame time > 20ms and, at a
	// 24ms drop threshold (1.5 x 16ms), every frame counts as dropped.
	rec := &modeRecorder{wall: wall, cost: 25 * time.Millisecond}
	s.Register("heavy", rec, PriorityCritical, 60)

	// The first evaluation is gated behind the 5s cooldown; the sustained
	// overload must flip the mode exactly once.
	tickN(src, testBase, 30*time.Millisecond, 180)

	require.Equal(t, []Mode{ModePerformance}, rec.modes, "exactly one notification for the flip")
	snap := s.Snapshot()
	assert.Equal(t, ModePerformance, snap.Mode)
	assert.NotZero(t, snap.DroppedFrames)

	// Still overloaded: later evaluations re-observe the same state and
	// must not re-notify.
	tickN(src, testBase.Add(10*time.Second), 30*time.Millisecond, 180)
	assert.Equal(t, []Mode{ModePerformance}, rec.modes, "no repeat notification in the same state")

	// The reduced budget is visible to consumers on subsequent ticks.
	var seen FrameContext
	s.Register("probe", ConsumerFunc(func(f FrameContext) { seen = f }), PriorityNormal, 60)
	src.Step(testBase.Add(30 * time.Second))
	assert.Equal(t, ModePerformance, seen.Mode)
	assert.Equal(t, 12*time.Millisecond, seen.FrameBudget)
}

func TestModeRestore(t *testing.T) {
	s, src, wall := newTestScheduler(t)
	defer s.Destroy()

	rec := &modeRecorder{wall: wall, cost: 25 * time.Millisecond}
	s.Register("worker", rec, PriorityCritical, 60)

	tickN(src, testBase, 30*time.Millisecond, 180)
	require.Equal(t, []Mode{ModePerformance}, rec.modes)

	// The load disappears. The drop rate is windowed per evaluation, so the
	// early overload is purged after one more evaluation and the following
	// one observes a clean window; the frame-time EMA decays over the same
	// stretch.
	rec.cost = time.Millisecond

	tickN(src, testBase.Add(10*time.Second), 30*time.Millisecond, 360)

	require.Equal(t, []Mode{ModePerformance, ModeQuality}, rec.modes, "quality restored exactly once")
	snap := s.Snapshot()
	assert.Equal(t, ModeQuality, snap.Mode)
	require.Len(t, snap.Consumers, 1)
	assert.Equal(t, intervalForFPS(60), snap.Consumers[0].FrameInterval,
		"intervals reset to the registered ideal on restore")
}

func TestEnterPerformanceRelaxesBackground(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	defer s.Destroy()

	rec := &modeRecorder{wall: newFakeWall()}
	s.Register("sparkle", rec, PriorityBackground, 60)
	s.Register("layout", ConsumerFunc(func(FrameContext) {}), PriorityNormal, 60)

	s.mu.Lock()
	s.enterPerformanceLocked(0.5, 25*time.Millisecond)
	bgInterval := s.entries["sparkle"].frameInterval
	normalInterval := s.entries["layout"].frameInterval
	budget := s.frameBudget
	s.mu.Unlock()

	// 16.67ms * 1.5 = 25ms, below the 33ms floor: the floor wins.
	assert.Equal(t, 33*time.Millisecond, bgInterval)
	assert.Equal(t, intervalForFPS(60), normalInterval, "non-Background intervals untouched")
	assert.Equal(t, 12*time.Millisecond, budget)
	assert.Equal(t, []Mode{ModePerformance}, rec.modes)
}

func TestEnterPerformanceKeepsRelaxedBackgroundAboveFloor(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	defer s.Destroy()

	s.Register("sparkle", ConsumerFunc(func(FrameContext) {}), PriorityBackground, 60)

	s.mu.Lock()
	s.entries["sparkle"].frameInterval = 40 * time.Millisecond
	s.enterPerformanceLocked(0.5, 25*time.Millisecond)
	bgInterval := s.entries["sparkle"].frameInterval
	s.mu.Unlock()

	// Already above the floor: the multiplicative relaxation applies.
	assert.Equal(t, 60*time.Millisecond, bgInterval)
}

func TestModeObserverPanicDisables(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	defer s.Destroy()

	s.Register("fragile", &panickyObserver{}, PriorityNormal, 60)

	s.mu.Lock()
	s.enterPerformanceLocked(0.5, 25*time.Millisecond)
	faulted := s.entries["fragile"].faulted
	s.mu.Unlock()

	assert.True(t, faulted, "a panicking mode observer is disabled like a panicking Tick")
}

type panickyObserver struct{}

func (p *panickyObserver) Tick(FrameContext) {}

func (p *panickyObserver) OnPerformanceModeChange(Mode) { panic("observer failure") }

func TestDropAccounting(t *testing.T) {
	s, src, wall := newTestScheduler(t)
	defer s.Destroy()

	// 30ms ticks exceed the 24ms quality drop threshold.
	s.Register("heavy", costly(wall, 30*time.Millisecond, nil), PriorityCritical, 60)
	tickN(src, testBase, 40*time.Millisecond, 3)

	snap := s.Snapshot()
	assert.Equal(t, uint64(3), snap.TotalFrames)
	assert.Equal(t, uint64(3), snap.DroppedFrames)
}
