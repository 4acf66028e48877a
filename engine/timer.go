package engine

import (
	"sync"
	"time"
)

// TimerState is the lifecycle state of a Timer.
type TimerState int

const (
	TimerStopped TimerState = iota
	TimerRunning
	TimerPaused
	TimerEnded
)

// TimerSnapshot is the persisted form of a timer.
type TimerSnapshot struct {
	Start      time.Time
	End        *time.Time
	TotalPause time.Duration
	PauseStart *time.Time
	Paused     bool
}

// Timer accounts elapsed play time with pauses excluded. While running it
// calls the tick function at a fixed interval; ticks only drive redraws and
// play no part in the elapsed time arithmetic.
type Timer struct {
	mu         sync.Mutex
	now        func() time.Time
	interval   time.Duration
	onTick     func()
	started    bool
	start      time.Time
	end        *time.Time
	totalPause time.Duration
	pauseStart *time.Time
	paused     bool

	stop chan struct{}
	done chan struct{}
}

// NewTimer creates a stopped timer. onTick may be nil.
func NewTimer(now func() time.Time, interval time.Duration, onTick func()) *Timer {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{now: now, interval: interval, onTick: onTick}
}

// StartTimer begins a fresh measurement at now.
func (t *Timer) StartTimer() {
	t.mu.Lock()
	t.started = true
	t.start = t.now()
	t.end = nil
	t.totalPause = 0
	t.pauseStart = nil
	t.paused = false
	done := t.stopTickingLocked()
	t.startTickingLocked()
	t.mu.Unlock()
	wait(done)
}

// PauseTimer records the pause start and halts ticking.
func (t *Timer) PauseTimer() {
	t.mu.Lock()
	if !t.started || t.end != nil || t.paused {
		t.mu.Unlock()
		return
	}
	now := t.now()
	t.pauseStart = &now
	t.paused = true
	done := t.stopTickingLocked()
	t.mu.Unlock()
	wait(done)
}

// ResumeTimer adds the finished pause to the accumulated pause time.
func (t *Timer) ResumeTimer() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused {
		return
	}
	if t.pauseStart != nil {
		t.totalPause += t.now().Sub(*t.pauseStart)
	}
	t.pauseStart = nil
	t.paused = false
	if t.end == nil {
		t.startTickingLocked()
	}
}

// CalculateElapsedTime returns whole seconds between start and end (now when
// end is nil), minus accumulated pauses and any pause still in progress.
// It never returns a negative value.
func (t *Timer) CalculateElapsedTime(start time.Time, end *time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.elapsedLocked(start, end) / time.Second)
}

// Elapsed is the elapsed play time of the current measurement.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return 0
	}
	return t.elapsedLocked(t.start, t.end)
}

func (t *Timer) elapsedLocked(start time.Time, end *time.Time) time.Duration {
	ref := t.now()
	if end != nil {
		ref = *end
	}
	d := ref.Sub(start) - t.totalPause
	if t.paused && t.pauseStart != nil && ref.After(*t.pauseStart) {
		d -= ref.Sub(*t.pauseStart)
	}
	if d < 0 {
		return 0
	}
	return d
}

// SetEndTime freezes the elapsed time at end and halts ticking.
func (t *Timer) SetEndTime(end time.Time) {
	t.mu.Lock()
	t.end = &end
	done := t.stopTickingLocked()
	t.mu.Unlock()
	wait(done)
}

// RestoreTimerState rehydrates a persisted timer. Ticking resumes only when
// the measurement has not ended and is not paused.
func (t *Timer) RestoreTimerState(start time.Time, end *time.Time, totalPause time.Duration, pauseStart *time.Time, isPaused bool) {
	t.mu.Lock()
	t.started = true
	t.start = start
	t.end = copyTime(end)
	t.totalPause = totalPause
	t.pauseStart = copyTime(pauseStart)
	t.paused = isPaused
	if t.paused && t.pauseStart == nil {
		// A paused record without a pause start counts from the restore.
		now := t.now()
		t.pauseStart = &now
	}
	done := t.stopTickingLocked()
	if t.end == nil && !t.paused {
		t.startTickingLocked()
	}
	t.mu.Unlock()
	wait(done)
}

// Stop halts ticking without changing the measurement. It is used on
// teardown and is safe to call repeatedly.
func (t *Timer) Stop() {
	t.mu.Lock()
	done := t.stopTickingLocked()
	t.mu.Unlock()
	wait(done)
}

// State returns the lifecycle state.
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case !t.started:
		return TimerStopped
	case t.end != nil:
		return TimerEnded
	case t.paused:
		return TimerPaused
	}
	return TimerRunning
}

// Snapshot returns the persisted form of the timer.
func (t *Timer) Snapshot() TimerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TimerSnapshot{
		Start:      t.start,
		End:        copyTime(t.end),
		TotalPause: t.totalPause,
		PauseStart: copyTime(t.pauseStart),
		Paused:     t.paused,
	}
}

// Ticking reports whether the periodic tick is active.
func (t *Timer) Ticking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func (t *Timer) startTickingLocked() {
	if t.stop != nil || t.onTick == nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done
	tick := t.onTick
	interval := t.interval
	go func() {
		defer close(done)
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tk.C:
				select {
				case <-stop:
					return
				default:
				}
				tick()
			}
		}
	}()
}

// stopTickingLocked signals the tick goroutine and returns a channel closed
// once it has exited. Callers wait on it after releasing the lock, since the
// tick function may read the timer.
func (t *Timer) stopTickingLocked() chan struct{} {
	if t.stop == nil {
		return nil
	}
	close(t.stop)
	done := t.done
	t.stop, t.done = nil, nil
	return done
}

func wait(done chan struct{}) {
	if done != nil {
		<-done
	}
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
