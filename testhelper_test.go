package framegov

import (
	"sync"
	"testing"
	"time"
)

// fakeWall is a hand-advanced wall clock substituted for Scheduler.nowFunc,
// making measured execution times fully deterministic: a consumer "costs"
// exactly what it advances the wall by inside its Tick.
type fakeWall struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeWall() *fakeWall {
	return &fakeWall{t: time.Unix(0, 0)}
}

func (w *fakeWall) Now() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.t
}

func (w *fakeWall) Advance(d time.Duration) {
	w.mu.Lock()
	w.t = w.t.Add(d)
	w.mu.Unlock()
}

// costly returns a consumer whose execution appears to take exactly cost of
// wall time, recording each run in *runs if non-nil.
func costly(wall *fakeWall, cost time.Duration, runs *int) ConsumerFunc {
	return func(FrameContext) {
		wall.Advance(cost)
		if runs != nil {
			*runs++
		}
	}
}

// newTestScheduler builds a scheduler driven by a ManualSource and a fake
// wall clock. Ticks only happen when the test calls src.Step.
func newTestScheduler(t *testing.T, opts ...Option) (*Scheduler, *ManualSource, *fakeWall) {
	t.Helper()
	src := NewManualSource()
	wall := newFakeWall()
	s, err := New(append([]Option{WithTickSource(src)}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	s.nowFunc = wall.Now
	return s, src, wall
}

// tickN steps the source n times with the given spacing, starting one
// spacing after base, returning the final timestamp delivered.
func tickN(src *ManualSource, base time.Time, spacing time.Duration, n int) time.Time {
	now := base
	for i := 0; i < n; i++ {
		now = now.Add(spacing)
		src.Step(now)
	}
	return now
}

// testBase is an arbitrary host-timestamp origin.
var testBase = time.Unix(1_000_000, 0)
