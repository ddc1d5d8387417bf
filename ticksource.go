package framegov

import (
	"sync"
	"time"
)

// TickSource delivers one timestamped callback per host frame (e.g. a
// display refresh timer). The scheduler owns exactly one subscription at a
// time; the returned cancel function releases it and is safe to call more
// than once.
//
// Implementations must deliver callbacks sequentially, never concurrently.
type TickSource interface {
	Subscribe(handler func(now time.Time)) (cancel func())
}

// TickerSource is a TickSource backed by a time.Ticker, standing in for a
// display refresh callback at a fixed rate.
type TickerSource struct {
	interval time.Duration
}

// NewTickerSource returns a source firing at the given interval. A
// non-positive interval defaults to 60 ticks per second.
func NewTickerSource(interval time.Duration) *TickerSource {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TickerSource{interval: interval}
}

// Subscribe starts a goroutine delivering ticker timestamps to handler until
// cancelled. Cancel only signals shutdown; a tick already in flight may
// still complete, which the scheduler tolerates by re-checking its state.
func (s *TickerSource) Subscribe(handler func(now time.Time)) (cancel func()) {
	quit := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case now := <-ticker.C:
				handler(now)
			}
		}
	}()

	return func() {
		once.Do(func() { close(quit) })
	}
}

// ManualSource is a TickSource stepped by hand. It exists for tests and for
// hosts that already own a frame loop and want to drive the scheduler
// directly.
type ManualSource struct {
	mu      sync.Mutex
	handler func(now time.Time)
}

// NewManualSource returns an un-subscribed manual source.
func NewManualSource() *ManualSource {
	return &ManualSource{}
}

// Subscribe installs the handler. Only one subscription is held at a time;
// re-subscribing replaces the previous handler.
func (s *ManualSource) Subscribe(handler func(now time.Time)) (cancel func()) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.handler = nil
			s.mu.Unlock()
		})
	}
}

// Step synchronously delivers one tick with the given timestamp. It is a
// no-op when nothing is subscribed.
func (s *ManualSource) Step(now time.Time) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()
	if handler != nil {
		handler(now)
	}
}
