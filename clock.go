package framegov

import (
	"math"
	"sync"
	"time"
)

// MasterClock is the scheduler-owned, deterministic, pausable and
// time-scalable timeline derived from the host's per-tick timestamp. It
// exists so dependent effects can compute perfectly phase-locked oscillation
// without each consumer tracking its own time.
//
// The clock integrates incrementally: each Advance accumulates the scaled
// host delta, so pausing or changing the time scale mid-run never causes the
// timeline to jump. While paused, the delta is forced to zero and the current
// time is frozen, but the frame count keeps incrementing so phase
// calculations survive a pause/resume cycle.
//
// The scheduler owns advancement exclusively; everything else only reads
// derived values. All methods are safe for concurrent use.
type MasterClock struct {
	mu         sync.RWMutex
	lastHost   time.Time
	current    time.Duration
	delta      time.Duration
	frameCount uint64
	timeScale  float64
	paused     bool
	anchored   bool
}

// NewMasterClock returns a clock at time zero with a time scale of 1.0.
func NewMasterClock() *MasterClock {
	return &MasterClock{timeScale: 1.0}
}

// Advance moves the timeline forward using the host tick timestamp. The
// first Advance after creation or Reset only anchors the clock; its delta is
// zero. The frame count increments unconditionally, including while paused.
func (c *MasterClock) Advance(hostTimestamp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frameCount++

	if !c.anchored {
		c.lastHost = hostTimestamp
		c.anchored = true
		c.delta = 0
		return
	}

	hostDelta := hostTimestamp.Sub(c.lastHost)
	c.lastHost = hostTimestamp
	if hostDelta < 0 {
		hostDelta = 0
	}

	if c.paused {
		c.delta = 0
		return
	}

	c.delta = time.Duration(float64(hostDelta) * c.timeScale)
	c.current += c.delta
}

// T returns the current scaled time since the clock's anchor.
func (c *MasterClock) T() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// DeltaTime returns the scaled delta of the most recent Advance. It is zero
// while paused.
func (c *MasterClock) DeltaTime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.delta
}

// FrameCount returns the number of Advance calls since creation or Reset.
func (c *MasterClock) FrameCount() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frameCount
}

// NormalizedTime returns the clock's phase within a repeating cycle, in
// [0, 1). A non-positive cycle yields 0.
func (c *MasterClock) NormalizedTime(cycle time.Duration) float64 {
	if cycle <= 0 {
		return 0
	}
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()

	phase := math.Mod(current.Seconds(), cycle.Seconds()) / cycle.Seconds()
	if phase < 0 {
		phase += 1
	}
	return phase
}

// SineWave returns offset + amplitude*sin(2π*freqHz*t + phase), where t is
// the clock's current time in seconds. Consumers using it oscillate in
// perfect phase lock with each other.
func (c *MasterClock) SineWave(freqHz, phase, amplitude, offset float64) float64 {
	c.mu.RLock()
	t := c.current.Seconds()
	c.mu.RUnlock()
	return offset + amplitude*math.Sin(2*math.Pi*freqHz*t+phase)
}

// CosineWave returns offset + amplitude*cos(2π*freqHz*t + phase), where t is
// the clock's current time in seconds.
func (c *MasterClock) CosineWave(freqHz, phase, amplitude, offset float64) float64 {
	c.mu.RLock()
	t := c.current.Seconds()
	c.mu.RUnlock()
	return offset + amplitude*math.Cos(2*math.Pi*freqHz*t+phase)
}

// TimeScale returns the current time scale.
func (c *MasterClock) TimeScale() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeScale
}

// SetTimeScale sets the timeline's rate multiplier, clamped to [0, ∞).
// A scale of 0 freezes the timeline without marking it paused.
func (c *MasterClock) SetTimeScale(scale float64) {
	if scale < 0 || math.IsNaN(scale) {
		scale = 0
	}
	c.mu.Lock()
	c.timeScale = scale
	c.mu.Unlock()
}

// Paused reports whether the clock is paused.
func (c *MasterClock) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// SetPaused pauses or resumes the timeline. While paused, Advance still
// increments the frame count but freezes current time and forces the delta
// to zero.
func (c *MasterClock) SetPaused(paused bool) {
	c.mu.Lock()
	c.paused = paused
	c.mu.Unlock()
}

// Reset reinitializes the clock: current time, delta and frame count are
// zeroed, and the next Advance re-anchors the timeline at its host
// timestamp. The time scale and paused flag are preserved.
func (c *MasterClock) Reset() {
	c.mu.Lock()
	c.current = 0
	c.delta = 0
	c.frameCount = 0
	c.anchored = false
	c.mu.Unlock()
}
