package framegov

import (
	"time"
)

// emaAlpha weights the exponential moving average of total tick time. The
// EMA warm-starts at the first observed value for accuracy.
const emaAlpha = 0.1

// recordFrame feeds the global frame accounting with one whole-tick
// duration. Caller must hold s.mu.
func (s *Scheduler) recordFrame(tickTime time.Duration) {
	s.totalFrames++
	s.windowFrames++

	if tickTime > time.Duration(float64(s.frameBudget)*s.cfg.DropFrameFactor) {
		s.droppedFrames++
		s.windowDropped++
	}

	if !s.avgWarm {
		s.avgFrameTime = float64(tickTime)
		s.avgWarm = true
	} else {
		s.avgFrameTime = (1-emaAlpha)*s.avgFrameTime + emaAlpha*float64(tickTime)
	}

	s.sampler.record(tickTime)
}

// maybeEvaluateMode runs the performance-mode controller, gated by the
// configured cooldown; evaluation is periodic, not per-tick. The drop rate
// covers the window since the previous evaluation only, so recovery is
// visible once the load clears and an old overload cannot dominate the
// denominator forever. Mode changes are idempotent: re-evaluating in the
// same state with the same inputs does not re-notify consumers. Caller must
// hold s.mu.
func (s *Scheduler) maybeEvaluateMode(now time.Time) {
	if s.lastModeEval.IsZero() {
		s.lastModeEval = now
		return
	}
	if now.Sub(s.lastModeEval) < s.cfg.ModeCooldown.Duration {
		return
	}
	s.lastModeEval = now

	var dropRate float64
	if s.windowFrames > 0 {
		dropRate = float64(s.windowDropped) / float64(s.windowFrames)
	}
	s.windowFrames = 0
	s.windowDropped = 0
	avg := time.Duration(s.avgFrameTime)

	switch s.mode {
	case ModeQuality:
		if dropRate > s.cfg.EnterPerformanceDropRate || avg > s.cfg.EnterPerformanceFrameTime.Duration {
			s.enterPerformanceLocked(dropRate, avg)
		}
	case ModePerformance:
		if dropRate < s.cfg.RestoreQualityDropRate && avg < s.cfg.RestoreQualityFrameTime.Duration {
			s.restoreQualityLocked(dropRate, avg)
		}
	}
}

// enterPerformanceLocked switches Quality → Performance: the shared budget
// shrinks and every Background consumer's interval is relaxed (floored at
// the configured minimum) so decorative work backs off first.
func (s *Scheduler) enterPerformanceLocked(dropRate float64, avg time.Duration) {
	s.mode = ModePerformance
	s.frameBudget = s.cfg.PerformanceFrameBudget.Duration

	floor := s.cfg.BackgroundFloorInterval.Duration
	for _, e := range s.order {
		if e.priority != PriorityBackground {
			continue
		}
		relaxed := time.Duration(float64(e.frameInterval) * s.cfg.GovernorExpandFactor)
		if relaxed < floor {
			relaxed = floor
		}
		e.frameInterval = relaxed
	}

	s.logger.Info().
		Float64("drop_rate", dropRate).
		Dur("avg_frame_time", avg).
		Log("entering performance mode")

	s.notifyModeLocked()
}

// restoreQualityLocked switches Performance → Quality: the full budget
// returns and every consumer's interval resets to its registered ideal.
func (s *Scheduler) restoreQualityLocked(dropRate float64, avg time.Duration) {
	s.mode = ModeQuality
	s.frameBudget = s.cfg.QualityFrameBudget.Duration

	for _, e := range s.order {
		e.frameInterval = e.idealInterval()
	}

	s.logger.Info().
		Float64("drop_rate", dropRate).
		Dur("avg_frame_time", avg).
		Log("restoring quality mode")

	s.notifyModeLocked()
}

// notifyModeLocked broadcasts the mode change to every consumer implementing
// [ModeObserver]. A panicking observer is treated exactly like a panicking
// Tick: logged and permanently disabled.
func (s *Scheduler) notifyModeLocked() {
	for _, e := range s.order {
		mo, ok := e.consumer.(ModeObserver)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.faulted = true
					s.logger.Err().
						Err(&ConsumerPanicError{Name: e.name, Value: r}).
						Str("consumer", e.name).
						Log("mode-change callback panicked; permanently disabled")
				}
			}()
			mo.OnPerformanceModeChange(s.mode)
		}()
	}
}
