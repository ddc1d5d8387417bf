package framegov

import (
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// defaultTargetFPS is applied when Register is given a non-positive target.
const defaultTargetFPS = 60

// consumerEntry is the registry record for one consumer: registration
// parameters plus the rolling statistics mutated on every tick it runs.
type consumerEntry struct {
	name     string
	consumer Consumer
	priority Priority

	targetFPS     float64
	frameInterval time.Duration

	// enabled is the administrative flag toggled via SetEnabled. faulted is
	// the permanent error-isolation flag; it is never cleared, the consumer
	// must be re-registered to run again. Both must hold for execution.
	enabled bool
	faulted bool

	lastUpdate     time.Time
	frameCount     uint64
	totalTime      time.Duration
	maxFrameTime   time.Duration
	skippedFrames  uint64
	recent         recentRing
	overBudgetHits int
	lastAdjustment time.Time
}

// runnable reports whether the entry is eligible for execution at all.
func (e *consumerEntry) runnable() bool {
	return e.enabled && !e.faulted
}

// idealInterval is the interval derived from the registered target FPS; the
// governor contracts back toward it when headroom allows.
func (e *consumerEntry) idealInterval() time.Duration {
	return intervalForFPS(e.targetFPS)
}

// intervalForFPS converts a frames-per-second target into a frame interval.
func intervalForFPS(fps float64) time.Duration {
	return time.Duration(float64(time.Second) / fps)
}

// Scheduler multiplexes registered consumers onto a single host tick
// subscription, enforcing the shared frame budget, priority ordering,
// adaptive interval governance and performance-mode hysteresis described in
// the package documentation.
//
// A Scheduler is an explicit instance owned by the application's composition
// root; there is no package-level singleton, so independent instances (and
// independent tests) coexist freely.
//
// Registry mutations (Register, Unregister, SetEnabled) are synchronous and
// take effect immediately; they are safe to call from any goroutine between
// ticks, but not from inside a consumer's Tick.
type Scheduler struct {
	// Prevent copying.
	_ [0]func()

	cfg    Config
	logger *logiface.Logger[logiface.Event]
	clock  *MasterClock
	source TickSource
	state  lifecycle

	// nowFunc measures consumer execution wall time. Overridden in tests
	// for deterministic durations.
	nowFunc func() time.Time

	mu      sync.Mutex
	cancel  func() // owned tick subscription, nil while stopped
	entries map[string]*consumerEntry
	order   []*consumerEntry // registration order (stable tie-break)
	scratch []*consumerEntry // per-tick sort buffer, reused

	tierProvider TierProvider
	flushSink    Flusher
	hints        Hints

	mode        Mode
	frameBudget time.Duration

	totalFrames   uint64
	droppedFrames uint64
	windowFrames  uint64 // frames since the last mode evaluation
	windowDropped uint64 // drops since the last mode evaluation
	avgFrameTime  float64 // EMA over total tick time, nanoseconds
	avgWarm       bool
	sampler       frameSampler

	lastModeEval time.Time
	destroyOnce  sync.Once
}

// New creates a Scheduler. With no options it uses [DefaultConfig], no
// logger, and a [TickerSource] at the configured tick rate. The scheduler
// starts in StateStopped; it starts automatically on the first registration
// (or explicitly via Start).
func New(opts ...Option) (*Scheduler, error) {
	resolved, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	source := resolved.source
	if source == nil {
		source = NewTickerSource(resolved.cfg.TickRate.Duration)
	}

	s := &Scheduler{
		cfg:          *resolved.cfg,
		logger:       resolved.logger,
		clock:        NewMasterClock(),
		source:       source,
		nowFunc:      time.Now,
		entries:      make(map[string]*consumerEntry),
		tierProvider: resolved.tierProvider,
		flushSink:    resolved.flushSink,
		mode:         ModeQuality,
		frameBudget:  resolved.cfg.QualityFrameBudget.Duration,
	}
	return s, nil
}

// MustNew is like New but panics on error, for composition roots where
// option errors are programmer mistakes.
func MustNew(opts ...Option) *Scheduler {
	s, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Clock returns the scheduler-owned master clock. Consumers and external
// effects read derived values from it; only the scheduler advances it.
func (s *Scheduler) Clock() *MasterClock {
	return s.clock
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return s.state.Load()
}

// Register adds a consumer under a unique name. A non-positive targetFPS
// defaults to 60. Registration under an existing name is rejected: it logs a
// warning and returns false, never silently replaces. The first successful
// registration starts the loop automatically.
func (s *Scheduler) Register(name string, consumer Consumer, priority Priority, targetFPS float64) bool {
	if consumer == nil {
		s.logger.Warning().Str("consumer", name).Log("rejecting nil consumer")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsTerminal() {
		s.logger.Warning().Str("consumer", name).Log("registration rejected: scheduler destroyed")
		return false
	}
	if _, exists := s.entries[name]; exists {
		s.logger.Warning().Str("consumer", name).Err(ErrDuplicateRegistration).
			Log("registration rejected: name already present")
		return false
	}

	if targetFPS <= 0 {
		targetFPS = defaultTargetFPS
	}

	e := &consumerEntry{
		name:          name,
		consumer:      consumer,
		priority:      priority,
		targetFPS:     targetFPS,
		frameInterval: intervalForFPS(targetFPS),
		enabled:       true,
	}
	s.entries[name] = e
	s.order = append(s.order, e)

	s.logger.Debug().
		Str("consumer", name).
		Stringer("priority", priority).
		Float64("target_fps", targetFPS).
		Log("consumer registered")

	if len(s.entries) == 1 {
		s.startLocked()
	}
	return true
}

// Unregister removes a consumer by name, reporting whether it was present.
// When the registry becomes empty the loop stops automatically.
func (s *Scheduler) Unregister(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return false
	}
	delete(s.entries, name)
	for i, o := range s.order {
		if o == e {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.logger.Debug().Str("consumer", name).Log("consumer unregistered")

	if len(s.entries) == 0 {
		s.stopLocked()
	}
	return true
}

// SetEnabled toggles the administrative enable flag for the named consumer,
// reporting whether it exists. It is independent of the permanent
// error-isolation disable: re-enabling a consumer that has faulted has no
// effect until the consumer is re-registered.
func (s *Scheduler) SetEnabled(name string, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return false
	}
	e.enabled = enabled
	return true
}

// SetTierProvider installs the device capability hint consulted once per
// tick. On the lowest tier, Background consumers are skipped entirely. A nil
// provider removes the gate.
func (s *Scheduler) SetTierProvider(provider TierProvider) {
	s.mu.Lock()
	s.tierProvider = provider
	s.mu.Unlock()
}

// SetFlushSink installs the sink invoked exactly once per tick after all
// consumers ran. A nil sink disables flushing.
func (s *Scheduler) SetFlushSink(sink Flusher) {
	s.mu.Lock()
	s.flushSink = sink
	s.mu.Unlock()
}

// SetHints stores the latest collaborator-supplied contextual hints; each
// subsequent FrameContext carries a copy.
func (s *Scheduler) SetHints(hints Hints) {
	s.mu.Lock()
	s.hints = hints
	s.mu.Unlock()
}

// Start subscribes to the tick source and begins processing. It is a no-op
// unless the scheduler is currently stopped.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

// startLocked transitions Stopped → Running and takes the subscription.
// Caller must hold s.mu.
func (s *Scheduler) startLocked() {
	if !s.state.TryTransition(StateStopped, StateRunning) {
		return
	}
	s.clock.SetPaused(false)
	s.cancel = s.source.Subscribe(s.onTick)
	s.logger.Info().Log("scheduler started")
}

// Stop releases the tick subscription. Idempotent; a no-op unless running or
// paused.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked transitions to Stopped and releases the subscription. Caller
// must hold s.mu.
func (s *Scheduler) stopLocked() {
	if !s.state.TryTransition(StateRunning, StateStopped) &&
		!s.state.TryTransition(StatePaused, StateStopped) {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.logger.Info().Log("scheduler stopped")
}

// Pause suspends all allocator, governor and controller work while keeping
// the tick subscription alive: ticks still advance the clock's frame count
// (with deltaTime forced to zero) so phase calculations survive the pause.
// A no-op unless running.
func (s *Scheduler) Pause() {
	if s.state.TryTransition(StateRunning, StatePaused) {
		s.clock.SetPaused(true)
	}
}

// Resume reverses Pause. A no-op unless paused.
func (s *Scheduler) Resume() {
	if s.state.TryTransition(StatePaused, StateRunning) {
		s.clock.SetPaused(false)
	}
}

// Destroy forces Stop, invokes each consumer's optional [Destroyer] hook
// exactly once in unspecified order, and clears the registry. The scheduler
// is terminal afterwards: registration attempts fail.
func (s *Scheduler) Destroy() {
	s.destroyOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.stopLocked()
		s.state.Store(StateDestroyed)

		for _, e := range s.order {
			if d, ok := e.consumer.(Destroyer); ok {
				s.destroyConsumer(e.name, d)
			}
		}
		s.entries = make(map[string]*consumerEntry)
		s.order = nil
		s.logger.Info().Log("scheduler destroyed")
	})
}

// destroyConsumer runs a destroy hook with panic recovery, so one faulty
// teardown cannot prevent the rest.
func (s *Scheduler) destroyConsumer(name string, d Destroyer) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Err().Err(&ConsumerPanicError{Name: name, Value: r}).
				Str("consumer", name).Log("consumer destroy hook panicked")
		}
	}()
	d.Destroy()
}

// Snapshot returns a read-only copy of the global totals and per-consumer
// statistics, in registration order. Mutating the snapshot has no effect on
// the scheduler.
func (s *Scheduler) Snapshot() MetricsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	p50, p95, p99 := s.sampler.percentiles()
	snap := MetricsSnapshot{
		TotalFrames:      s.totalFrames,
		DroppedFrames:    s.droppedFrames,
		AverageFrameTime: time.Duration(s.avgFrameTime),
		MaxFrameTime:     s.sampler.max,
		P50:              p50,
		P95:              p95,
		P99:              p99,
		Mode:             s.mode,
		Consumers:        make([]ConsumerStats, 0, len(s.order)),
	}
	for _, e := range s.order {
		cs := ConsumerStats{
			Name:          e.name,
			Priority:      e.priority,
			Enabled:       e.runnable(),
			TargetFPS:     e.targetFPS,
			FrameInterval: e.frameInterval,
			FrameCount:    e.frameCount,
			TotalTime:     e.totalTime,
			MaxFrameTime:  e.maxFrameTime,
			SkippedFrames: e.skippedFrames,
			LastUpdate:    e.lastUpdate,
		}
		if e.frameCount > 0 {
			cs.AverageFrameTime = e.totalTime / time.Duration(e.frameCount)
		}
		snap.Consumers = append(snap.Consumers, cs)
	}
	return snap
}
