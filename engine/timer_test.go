package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestTimerPauseResume(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock.Now, time.Second, nil)
	t0 := clock.Now()

	timer.StartTimer()
	assert.Equal(t, TimerRunning, timer.State())

	clock.Advance(5 * time.Second)
	timer.PauseTimer()
	assert.Equal(t, TimerPaused, timer.State())

	clock.Advance(5 * time.Second)
	assert.Equal(t, 5, timer.CalculateElapsedTime(t0, nil), "an open pause does not count")

	clock.Advance(5 * time.Second)
	timer.ResumeTimer()
	assert.Equal(t, TimerRunning, timer.State())

	clock.Advance(5 * time.Second)
	// 20s since start, 10s paused
	assert.Equal(t, 10, timer.CalculateElapsedTime(t0, nil))
	assert.Equal(t, 10*time.Second, timer.Elapsed())
}

func TestTimerPauseIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock.Now, time.Second, nil)
	timer.PauseTimer()
	assert.Equal(t, TimerStopped, timer.State(), "pausing a stopped timer does nothing")

	timer.StartTimer()
	clock.Advance(2 * time.Second)
	timer.PauseTimer()
	clock.Advance(3 * time.Second)
	timer.PauseTimer()
	timer.ResumeTimer()
	timer.ResumeTimer()
	assert.Equal(t, 3*time.Second, timer.Snapshot().TotalPause)
}

func TestTimerSetEndTime(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock.Now, time.Second, nil)
	timer.StartTimer()
	clock.Advance(42 * time.Second)
	timer.SetEndTime(clock.Now())
	clock.Advance(time.Hour)

	assert.Equal(t, TimerEnded, timer.State())
	assert.Equal(t, 42*time.Second, timer.Elapsed())
	timer.PauseTimer()
	assert.Equal(t, TimerEnded, timer.State())
}

func TestTimerElapsedNeverNegative(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock.Now, time.Second, nil)
	future := clock.Now().Add(time.Minute)
	assert.Equal(t, 0, timer.CalculateElapsedTime(future, nil))
}

func TestTimerRestore(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now()
	clock.Advance(time.Minute)
	pausedAt := clock.Now().Add(-10 * time.Second)

	timer := NewTimer(clock.Now, time.Second, nil)
	timer.RestoreTimerState(start, nil, 20*time.Second, &pausedAt, true)

	assert.Equal(t, TimerPaused, timer.State())
	assert.Equal(t, 30*time.Second, timer.Elapsed())

	timer.ResumeTimer()
	clock.Advance(5 * time.Second)
	assert.Equal(t, 35*time.Second, timer.Elapsed())

	snap := timer.Snapshot()
	assert.Equal(t, start, snap.Start)
	assert.Equal(t, 30*time.Second, snap.TotalPause)
	assert.Nil(t, snap.PauseStart)
}

func TestTimerTicking(t *testing.T) {
	var ticks atomic.Int32
	timer := NewTimer(time.Now, 5*time.Millisecond, func() { ticks.Add(1) })

	timer.StartTimer()
	require.True(t, timer.Ticking())
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)

	timer.PauseTimer()
	assert.False(t, timer.Ticking())
	stopped := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, ticks.Load(), "no ticks while paused")

	timer.ResumeTimer()
	assert.True(t, timer.Ticking())

	timer.SetEndTime(time.Now())
	assert.False(t, timer.Ticking())

	timer.Stop()
	timer.Stop()
}

func TestTimerRestoreEndedDoesNotTick(t *testing.T) {
	timer := NewTimer(time.Now, time.Millisecond, func() {})
	end := time.Now()
	timer.RestoreTimerState(end.Add(-time.Minute), &end, 0, nil, false)
	assert.False(t, timer.Ticking())
	assert.Equal(t, TimerEnded, timer.State())
	assert.Equal(t, time.Minute, timer.Elapsed())
}
