package timer

import (
	"errors"
	"fmt"
)

// ErrInvalidState marks programmer misuse of the timer core (ticking an
// unarmed clock, starting a running controller). It is never retried.
var ErrInvalidState = errors.New("invalid timer state")

// Clock is a pure tick source. It advances elapsed/remaining time once per
// Tick call while running and never decides what "done" means.
//
// Ticks must be serialized: the caller drives Tick from a single periodic
// source. Two interval sources ticking the same clock is exactly the drift
// bug this type exists to prevent.
type Clock struct {
	armed   bool
	running bool
	target  int // 0 = unbounded
	elapsed int
}

// Arm resets the clock for a new session. It does not start running.
func (c *Clock) Arm(cfg Config) {
	c.armed = true
	c.running = false
	c.target = cfg.TargetSeconds
	c.elapsed = 0
}

// Start begins ticking. No-op if already running.
func (c *Clock) Start() error {
	if !c.armed {
		return fmt.Errorf("start unarmed clock: %w", ErrInvalidState)
	}
	c.running = true
	return nil
}

// Tick advances the clock by one second. When a bounded clock reaches zero
// remaining, running flips to false; this is the only automatic stop.
func (c *Clock) Tick() error {
	if !c.running {
		return fmt.Errorf("tick stopped clock: %w", ErrInvalidState)
	}
	c.elapsed++
	if c.target > 0 && c.elapsed >= c.target {
		c.running = false
	}
	return nil
}

// Stop is an explicit manual stop. Elapsed time is untouched.
func (c *Clock) Stop() {
	c.running = false
}

// Reset returns the clock to the unarmed, zeroed state.
func (c *Clock) Reset() {
	c.armed = false
	c.running = false
	c.target = 0
	c.elapsed = 0
}

func (c *Clock) Running() bool { return c.running }

func (c *Clock) Elapsed() int { return c.elapsed }

// Remaining returns the seconds left and whether the clock is bounded.
// For an unbounded clock the first value is 0 and the second false.
func (c *Clock) Remaining() (int, bool) {
	if c.target == 0 {
		return 0, false
	}
	r := c.target - c.elapsed
	if r < 0 {
		r = 0
	}
	return r, true
}
