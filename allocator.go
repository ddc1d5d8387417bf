package framegov

import (
	"time"

	"golang.org/x/exp/slices"
)

// onTick is the host tick handler: it advances the clock, runs the budget
// allocator over the registered consumers, flushes the sink, and feeds the
// global frame accounting that drives mode evaluation. It runs on the tick
// source's goroutine; everything it touches is guarded by s.mu.
func (s *Scheduler) onTick(now time.Time) {
	if st := s.state.Load(); st != StateRunning && st != StatePaused {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the lock: a Stop racing a tick already in flight wins.
	st := s.state.Load()
	if st != StateRunning && st != StatePaused {
		return
	}

	s.clock.Advance(now)
	if st == StatePaused {
		// The subscription stays alive so the frame count keeps advancing,
		// but all allocator/governor/controller work is skipped.
		return
	}

	tickStart := s.nowFunc()

	frame := FrameContext{
		Timestamp:   now,
		Delta:       s.clock.DeltaTime(),
		Mode:        s.mode,
		FrameBudget: s.frameBudget,
		Hints:       s.hints,
	}

	s.runConsumers(now, frame)

	if s.flushSink != nil {
		s.flushSink.Flush()
	}

	s.recordFrame(s.nowFunc().Sub(tickStart))
	s.maybeEvaluateMode(now)
}

// runConsumers executes one allocation pass: enabled consumers in priority
// order (registration order within a tier), subject to the device-capability
// gate, the asymmetric budget gate, and each consumer's own interval
// throttle. Caller must hold s.mu.
func (s *Scheduler) runConsumers(now time.Time, frame FrameContext) {
	remaining := s.frameBudget

	tier := TierHigh
	if s.tierProvider != nil {
		tier = s.tierProvider()
	}

	s.scratch = append(s.scratch[:0], s.order...)
	slices.SortStableFunc(s.scratch, func(a, b *consumerEntry) int {
		return int(a.priority) - int(b.priority)
	})

	for _, e := range s.scratch {
		if !e.runnable() {
			continue
		}

		// Device-capability gate: the lowest tier never pays for
		// cosmetic-only effects. No stat update.
		if tier == TierLow && e.priority == PriorityBackground {
			continue
		}

		// Budget gate: only Background is ever sacrificed. Critical and
		// Normal degrade the frame rather than starve.
		if remaining <= 0 && e.priority == PriorityBackground {
			e.skippedFrames++
			continue
		}

		// Per-consumer throttle (the FPS cap, distinct from budget
		// skipping). Silent: no stat update.
		if !e.lastUpdate.IsZero() && now.Sub(e.lastUpdate) < e.frameInterval {
			continue
		}

		elapsed := s.execute(e, frame)
		remaining -= elapsed
		if e.faulted {
			continue
		}

		e.frameCount++
		e.totalTime += elapsed
		if elapsed > e.maxFrameTime {
			e.maxFrameTime = elapsed
		}
		e.lastUpdate = now
		e.recent.append(elapsed)
		if elapsed > e.frameInterval {
			e.overBudgetHits++
		}

		// Advisory only; control flow is unaffected.
		if elapsed > s.frameBudget/2 {
			s.logger.Warning().
				Str("consumer", e.name).
				Dur("elapsed", elapsed).
				Dur("frame_budget", s.frameBudget).
				Log("consumer exceeded half the frame budget")
		}

		s.governConsumer(e, now)
	}
}

// execute invokes the consumer's Tick with panic isolation, returning the
// measured wall-clock execution time. A recovered panic permanently disables
// the consumer; the scheduler itself never crashes from consumer faults.
func (s *Scheduler) execute(e *consumerEntry, frame FrameContext) (elapsed time.Duration) {
	start := s.nowFunc()
	defer func() {
		elapsed = s.nowFunc().Sub(start)
		if r := recover(); r != nil {
			e.faulted = true
			s.logger.Err().
				Err(&ConsumerPanicError{Name: e.name, Value: r}).
				Str("consumer", e.name).
				Log("consumer panicked; permanently disabled")
		}
	}()
	e.consumer.Tick(frame)
	return
}
