package hal

import (
	"sync"
	"time"
)

// ClockTimer emulates a free running peripheral counter using the monotonic clock.
type ClockTimer struct {
	ticksPerMs uint64
	now        func() time.Time

	mu    sync.Mutex
	start time.Time
	open  bool
}

// NewClockTimer creates a timer counting ticksPerMs ticks per millisecond.
func NewClockTimer(ticksPerMs uint64) *ClockTimer {
	return &ClockTimer{
		ticksPerMs: ticksPerMs,
		now:        time.Now,
	}
}

// Open starts the counter from zero.
func (t *ClockTimer) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.open {
		return ErrAlreadyOpen
	}
	t.open = true
	t.start = t.now()
	return nil
}

// Reset sets the counter to zero.
func (t *ClockTimer) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return ErrNotOpen
	}
	t.start = t.now()
	return nil
}

// Counter returns the ticks elapsed since the last reset.
func (t *ClockTimer) Counter() (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return 0, ErrNotOpen
	}
	elapsed := t.now().Sub(t.start)
	if elapsed < 0 {
		return 0, nil
	}
	ms := uint64(elapsed / time.Millisecond)
	rem := uint64(elapsed % time.Millisecond)
	return ms*t.ticksPerMs + rem*t.ticksPerMs/uint64(time.Millisecond), nil
}

// Close stops the counter.
func (t *ClockTimer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = false
	return nil
}
