package framegov

import (
	"time"
)

// contractionSlack is the margin above the ideal interval below which the
// governor considers a consumer already restored and leaves it alone.
const contractionSlack = 500 * time.Microsecond

// governConsumer runs the adaptive interval governance for one consumer,
// inline with the execution bookkeeping. Each consumer has an independent
// observation window; between window boundaries this only accumulates.
//
// At each window boundary exactly one of three things happens: the interval
// expands (sustained overruns), contracts toward the ideal (sustained
// headroom), or stays put. The counters reset regardless, which is what
// makes the throttle hysteretic instead of oscillating every frame.
//
// Caller must hold s.mu, and must only call this for an entry that just
// executed.
func (s *Scheduler) governConsumer(e *consumerEntry, now time.Time) {
	if e.lastAdjustment.IsZero() {
		// First execution opens the window; nothing to observe yet.
		e.lastAdjustment = now
		return
	}
	if now.Sub(e.lastAdjustment) <= s.cfg.GovernorWindow.Duration {
		return
	}

	budget := s.frameBudget
	avgExec := e.recent.mean()
	ideal := e.idealInterval()
	maxInterval := s.cfg.MaxFrameInterval.Duration

	switch {
	case e.overBudgetHits >= s.cfg.GovernorOverBudgetThreshold && e.frameInterval < maxInterval:
		// Expand: relax the consumer's FPS target to shed sustained
		// overruns, capped so nothing throttles below one update per
		// MaxFrameInterval.
		expanded := time.Duration(float64(e.frameInterval) * s.cfg.GovernorExpandFactor)
		if expanded > maxInterval {
			expanded = maxInterval
		}
		s.logger.Debug().
			Str("consumer", e.name).
			Int("over_budget_hits", e.overBudgetHits).
			Dur("from", e.frameInterval).
			Dur("to", expanded).
			Log("governor expanded frame interval")
		e.frameInterval = expanded

	case budget-avgExec > time.Duration(float64(budget)*s.cfg.GovernorHeadroomRatio) &&
		e.frameInterval > ideal+contractionSlack:
		// Contract: sustained headroom earns the consumer its registered
		// FPS target back, gradually.
		contracted := time.Duration(float64(e.frameInterval) * s.cfg.GovernorContractFactor)
		if contracted < ideal {
			contracted = ideal
		}
		s.logger.Debug().
			Str("consumer", e.name).
			Dur("avg_exec", avgExec).
			Dur("from", e.frameInterval).
			Dur("to", contracted).
			Log("governor contracted frame interval")
		e.frameInterval = contracted
	}

	e.overBudgetHits = 0
	e.lastAdjustment = now
}
