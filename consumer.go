package framegov

import (
	"time"
)

// Priority controls both execution order within a tick and skip eligibility
// under budget pressure. Lower values execute first.
type Priority int

const (
	// PriorityCritical consumers run first and are never skipped for budget
	// reasons (e.g. beat-sync or layout-affecting updates).
	PriorityCritical Priority = iota
	// PriorityNormal consumers run after Critical and are likewise never
	// skipped for budget reasons.
	PriorityNormal
	// PriorityBackground consumers run last and are sacrificed first: they
	// are skipped when the shared budget is exhausted, and skipped entirely
	// on the lowest device tier.
	PriorityBackground
)

// String returns a human-readable representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "Critical"
	case PriorityNormal:
		return "Normal"
	case PriorityBackground:
		return "Background"
	default:
		return "Unknown"
	}
}

// Mode is the global two-state quality lever affecting the shared frame
// budget and Background consumer intervals.
type Mode int

const (
	// ModeQuality is the default mode: full frame budget, ideal intervals.
	ModeQuality Mode = iota
	// ModePerformance trades visual smoothness for headroom: reduced frame
	// budget and relaxed Background intervals.
	ModePerformance
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeQuality:
		return "Quality"
	case ModePerformance:
		return "Performance"
	default:
		return "Unknown"
	}
}

// DeviceTier is an externally supplied capability hint. On TierLow devices
// Background consumers are never executed at all, so low-end hardware never
// pays for cosmetic-only effects.
type DeviceTier int

const (
	// TierHigh is assumed when no tier provider is configured.
	TierHigh DeviceTier = iota
	// TierMedium imposes no additional gating; it exists so providers can
	// express a middle ground without triggering the Background gate.
	TierMedium
	// TierLow disables Background consumer execution entirely.
	TierLow
)

// String returns a human-readable representation of the tier.
func (t DeviceTier) String() string {
	switch t {
	case TierHigh:
		return "High"
	case TierMedium:
		return "Medium"
	case TierLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// Hints carries optional per-tick contextual values supplied by external
// collaborators (audio analysis, scroll tracking, device orientation).
// Every hint has a presence flag; consumers must tolerate any hint being
// absent.
type Hints struct {
	BeatIntensity    float64
	HasBeatIntensity bool

	ScrollRatio    float64
	HasScrollRatio bool

	TiltX   float64
	TiltY   float64
	HasTilt bool
}

// FrameContext is the ephemeral per-tick value object passed to each
// consumer. It is rebuilt every tick and passed by value; consumers must not
// retain references to it across ticks.
type FrameContext struct {
	// Timestamp is the host tick timestamp this frame was driven by.
	Timestamp time.Time
	// Delta is the master clock delta for this tick (zero while paused,
	// scaled by the clock's time scale otherwise).
	Delta time.Duration
	// Mode is the performance mode in effect for this tick.
	Mode Mode
	// FrameBudget is the shared budget in effect for this tick.
	FrameBudget time.Duration
	// Hints are the most recent collaborator-supplied contextual values.
	Hints Hints
}

// Consumer is a registered producer of one visual update per eligible tick.
// Tick runs synchronously on the scheduler goroutine and is expected to
// return promptly; it is not cancellable mid-execution.
type Consumer interface {
	Tick(frame FrameContext)
}

// ConsumerFunc adapts a plain function to the Consumer interface.
type ConsumerFunc func(frame FrameContext)

// Tick implements Consumer.
func (f ConsumerFunc) Tick(frame FrameContext) { f(frame) }

// ModeObserver is an optional capability: consumers implementing it are
// notified whenever the global performance mode changes. Notifications are
// idempotent; re-evaluating in the same state does not re-notify.
type ModeObserver interface {
	OnPerformanceModeChange(mode Mode)
}

// Destroyer is an optional capability: consumers implementing it have
// Destroy invoked exactly once by [Scheduler.Destroy], in unspecified order.
type Destroyer interface {
	Destroy()
}

// Flusher batches side-effect writes accumulated during a tick. If a sink is
// configured it is invoked exactly once per tick, after all consumers ran.
type Flusher interface {
	Flush()
}

// FlusherFunc adapts a plain function to the Flusher interface.
type FlusherFunc func()

// Flush implements Flusher.
func (f FlusherFunc) Flush() { f() }

// TierProvider reports the current device capability tier. It is consulted
// once per tick.
type TierProvider func() DeviceTier
