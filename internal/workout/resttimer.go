package workout

// RestPresets are the jump-to values offered during a rest period
var RestPresets = []int{30, 60, 90, 120}

// RestTimer is a headless one-second countdown with pause and manual
// adjustment. The caller supplies the ticks (the TUI uses a scheduled
// one-second tick message); pausing freezes the countdown without
// stopping the tick source.
type RestTimer struct {
	planned   int
	remaining int
	paused    bool
	done      bool
}

// NewRestTimer creates a countdown from the planned rest duration
func NewRestTimer(seconds int) *RestTimer {
	if seconds < 0 {
		seconds = 0
	}
	return &RestTimer{planned: seconds, remaining: seconds}
}

// Tick advances the countdown by one second. It returns true exactly
// once, on the tick that reaches zero. Ticks while paused or after
// completion do nothing.
func (t *RestTimer) Tick() bool {
	if t.paused || t.done {
		return false
	}
	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.done = true
		return true
	}
	return false
}

// Pause freezes the countdown
func (t *RestTimer) Pause() { t.paused = true }

// Resume unfreezes the countdown
func (t *RestTimer) Resume() { t.paused = false }

// Toggle flips between paused and running
func (t *RestTimer) Toggle() { t.paused = !t.paused }

// Paused reports whether the countdown is frozen
func (t *RestTimer) Paused() bool { return t.paused }

// Done reports whether the countdown has reached zero
func (t *RestTimer) Done() bool { return t.done }

// Remaining returns the seconds left
func (t *RestTimer) Remaining() int { return t.remaining }

// Planned returns the originally planned rest duration
func (t *RestTimer) Planned() int { return t.planned }

// AddTime adjusts the remaining time by delta seconds. Negative deltas
// are clamped so the countdown never goes below zero; there is no upper
// bound. Adjusting a finished timer restarts it.
func (t *RestTimer) AddTime(delta int) {
	t.remaining += delta
	if t.remaining < 0 {
		t.remaining = 0
	}
	if t.remaining > 0 {
		t.done = false
	}
}

// SetRemaining jumps the countdown to a preset value
func (t *RestTimer) SetRemaining(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	t.remaining = seconds
	if t.remaining > 0 {
		t.done = false
	}
}

// Progress returns how far through the planned rest the countdown is,
// from 0 to 1. Added time past the plan reads as 0.
func (t *RestTimer) Progress() float64 {
	if t.planned <= 0 {
		return 1
	}
	p := 1 - float64(t.remaining)/float64(t.planned)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Reset restores the full planned duration and clears pause/done state
func (t *RestTimer) Reset() {
	t.remaining = t.planned
	t.paused = false
	t.done = false
}
