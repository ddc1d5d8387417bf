package framegov

import (
	"sort"
	"time"
)

// frameSampleSize is the rolling window used for global frame-time
// percentiles (~4 seconds at 60fps).
const frameSampleSize = 240

// recentCapacity is the fixed capacity of each consumer's recent frame-time
// ring buffer.
const recentCapacity = 20

// MetricsSnapshot is a read-only aggregate of global scheduler health plus
// per-consumer rolling statistics. It is a copy; mutating it has no effect
// on the scheduler.
type MetricsSnapshot struct {
	// TotalFrames is the number of ticks processed while running.
	TotalFrames uint64
	// DroppedFrames counts ticks whose total time exceeded the drop
	// threshold (DropFrameFactor × frame budget).
	DroppedFrames uint64
	// AverageFrameTime is an exponential moving average of total tick time.
	AverageFrameTime time.Duration
	// MaxFrameTime is the worst total tick time observed.
	MaxFrameTime time.Duration
	// P50, P95 and P99 are rolling-window percentiles of total tick time.
	P50 time.Duration
	P95 time.Duration
	P99 time.Duration
	// Mode is the performance mode at snapshot time.
	Mode Mode
	// Consumers holds per-consumer statistics in registration order.
	Consumers []ConsumerStats
}

// ConsumerStats is the read-only per-consumer view exposed through
// [MetricsSnapshot].
type ConsumerStats struct {
	Name          string
	Priority      Priority
	Enabled       bool
	TargetFPS     float64
	FrameInterval time.Duration
	FrameCount    uint64
	TotalTime     time.Duration
	MaxFrameTime  time.Duration
	SkippedFrames uint64
	// AverageFrameTime is TotalTime / FrameCount, zero before the first
	// execution.
	AverageFrameTime time.Duration
	LastUpdate       time.Time
}

// frameSampler keeps a rolling buffer of whole-tick durations and computes
// percentiles on demand. It is only touched from the tick path (writes) and
// under the scheduler lock (reads), so it carries no lock of its own.
type frameSampler struct {
	samples [frameSampleSize]time.Duration
	idx     int
	count   int
	sum     time.Duration
	max     time.Duration
}

// record adds one whole-tick duration to the rolling window.
func (s *frameSampler) record(d time.Duration) {
	if s.count >= frameSampleSize {
		s.sum -= s.samples[s.idx]
	}
	s.samples[s.idx] = d
	s.sum += d
	s.idx++
	if s.idx >= frameSampleSize {
		s.idx = 0
	}
	if s.count < frameSampleSize {
		s.count++
	}
	if d > s.max {
		s.max = d
	}
}

// percentiles returns the p50/p95/p99 of the current window. All zero when
// no samples have been recorded.
func (s *frameSampler) percentiles() (p50, p95, p99 time.Duration) {
	if s.count == 0 {
		return 0, 0, 0
	}
	sorted := make([]time.Duration, s.count)
	copy(sorted, s.samples[:s.count])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[percentileIndex(s.count, 50)],
		sorted[percentileIndex(s.count, 95)],
		sorted[percentileIndex(s.count, 99)]
}

// percentileIndex computes the sample index for a given percentile (0-100).
func percentileIndex(n, p int) int {
	index := (p * n) / 100
	if index >= n {
		return n - 1
	}
	return index
}

// recentRing is the fixed-capacity ring buffer of a consumer's most recent
// execution times, used by the adaptive governor's headroom calculation.
type recentRing struct {
	buf   [recentCapacity]time.Duration
	idx   int
	count int
	sum   time.Duration
}

// append records an execution time, dropping the oldest sample beyond
// capacity.
func (r *recentRing) append(d time.Duration) {
	if r.count >= recentCapacity {
		r.sum -= r.buf[r.idx]
	}
	r.buf[r.idx] = d
	r.sum += d
	r.idx++
	if r.idx >= recentCapacity {
		r.idx = 0
	}
	if r.count < recentCapacity {
		r.count++
	}
}

// mean returns the average of the retained samples, zero when empty.
func (r *recentRing) mean() time.Duration {
	if r.count == 0 {
		return 0
	}
	return r.sum / time.Duration(r.count)
}
