package framegov

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameSamplerPercentiles(t *testing.T) {
	var s frameSampler
	for i := 1; i <= 100; i++ {
		s.record(time.Duration(i) * time.Millisecond)
	}

	p50, p95, p99 := s.percentiles()
	if p50 != 51*time.Millisecond {
		t.Errorf("p50 = %v, want 51ms", p50)
	}
	if p95 != 96*time.Millisecond {
		t.Errorf("p95 = %v, want 96ms", p95)
	}
	if p99 != 100*time.Millisecond {
		t.Errorf("p99 = %v, want 100ms", p99)
	}
	if s.max != 100*time.Millisecond {
		t.Errorf("max = %v, want 100ms", s.max)
	}
}

func TestFrameSamplerEmpty(t *testing.T) {
	var s frameSampler
	p50, p95, p99 := s.percentiles()
	if p50 != 0 || p95 != 0 || p99 != 0 {
		t.Errorf("empty sampler percentiles = %v/%v/%v, want all zero", p50, p95, p99)
	}
}

func TestFrameSamplerRollingWindow(t *testing.T) {
	var s frameSampler
	for i := 0; i < frameSampleSize+60; i++ {
		s.record(time.Millisecond)
	}
	if s.count != frameSampleSize {
		t.Errorf("count = %d, want %d", s.count, frameSampleSize)
	}
	if s.sum != time.Duration(frameSampleSize)*time.Millisecond {
		t.Errorf("sum = %v, want %v", s.sum, time.Duration(frameSampleSize)*time.Millisecond)
	}
}

func TestRecentRing(t *testing.T) {
	var r recentRing
	if r.mean() != 0 {
		t.Errorf("empty ring mean = %v, want 0", r.mean())
	}
	for i := 1; i <= 25; i++ {
		r.append(time.Duration(i) * time.Millisecond)
	}
	// Only the 20 most recent samples (6..25ms) are retained.
	if r.count != recentCapacity {
		t.Errorf("count = %d, want %d", r.count, recentCapacity)
	}
	want := time.Duration(6+25) * time.Millisecond / 2
	if got := r.mean(); got != want {
		t.Errorf("mean = %v, want %v", got, want)
	}
}

func TestSnapshotTotals(t *testing.T) {
	s, src, wall := newTestScheduler(t)
	defer s.Destroy()

	s.Register("steady", costly(wall, 4*time.Millisecond, nil), PriorityNormal, 60)
	last := tickN(src, testBase, 20*time.Millisecond, 3)

	snap := s.Snapshot()
	assert.Equal(t, uint64(3), snap.TotalFrames)
	assert.Equal(t, uint64(0), snap.DroppedFrames)
	assert.Equal(t, 4*time.Millisecond, snap.AverageFrameTime, "EMA warm-starts at the first value")
	assert.Equal(t, 4*time.Millisecond, snap.MaxFrameTime)
	assert.Equal(t, 4*time.Millisecond, snap.P50)
	assert.Equal(t, ModeQuality, snap.Mode)

	require.Len(t, snap.Consumers, 1)
	c := snap.Consumers[0]
	assert.Equal(t, "steady", c.Name)
	assert.Equal(t, uint64(3), c.FrameCount)
	assert.Equal(t, 12*time.Millisecond, c.TotalTime)
	assert.Equal(t, 4*time.Millisecond, c.AverageFrameTime)
	assert.Equal(t, last, c.LastUpdate)
}

func TestSnapshotIsCopy(t *testing.T) {
	s, src, wall := newTestScheduler(t)
	defer s.Destroy()

	s.Register("c", costly(wall, time.Millisecond, nil), PriorityNormal, 60)
	src.Step(testBase)

	snap := s.Snapshot()
	require.Len(t, snap.Consumers, 1)
	snap.Consumers[0].FrameCount = 999
	snap.TotalFrames = 999

	fresh := s.Snapshot()
	assert.Equal(t, uint64(1), fresh.TotalFrames)
	assert.Equal(t, uint64(1), fresh.Consumers[0].FrameCount)
}
