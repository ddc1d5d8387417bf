package framegov

import (
	"sync/atomic"
)

// State represents the current lifecycle state of the scheduler loop.
//
// State Machine:
//
//	StateStopped → StateRunning       [Start(), or first registration]
//	StateRunning ⇄ StatePaused        [Pause()/Resume()]
//	StateRunning → StateStopped       [Stop(), or last unregistration]
//	StatePaused → StateStopped        [Stop()]
//	any → StateDestroyed              [Destroy()]
//
// Lifecycle operations in an invalid state are no-ops, not errors; the
// transitions use CAS so racing callers resolve deterministically.
type State uint32

const (
	// StateStopped indicates the loop holds no tick subscription.
	StateStopped State = iota
	// StateRunning indicates the loop is subscribed and processing ticks.
	StateRunning
	// StatePaused indicates the subscription is alive but each tick skips
	// all allocator/governor/controller work.
	StatePaused
	// StateDestroyed is terminal; the registry has been cleared and the
	// scheduler accepts no further registrations.
	StateDestroyed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// lifecycle is a lock-free state holder for the scheduler loop. Transitions
// between temporary states use CAS; Store is reserved for the irreversible
// StateDestroyed.
type lifecycle struct {
	v atomic.Uint32
}

// Load returns the current state atomically.
func (l *lifecycle) Load() State {
	return State(l.v.Load())
}

// Store atomically stores a new state without transition validation.
func (l *lifecycle) Store(s State) {
	l.v.Store(uint32(s))
}

// TryTransition attempts to atomically transition from one state to another,
// reporting whether it succeeded.
func (l *lifecycle) TryTransition(from, to State) bool {
	return l.v.CompareAndSwap(uint32(from), uint32(to))
}

// IsTerminal returns true if the scheduler has been destroyed.
func (l *lifecycle) IsTerminal() bool {
	return l.Load() == StateDestroyed
}
