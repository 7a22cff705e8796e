package timer

// Cause classifies why a session ended.
type Cause int

const (
	CauseNaturalExpiry Cause = iota
	CauseManualStop
	CauseAbandoned
)

var causeNames = map[Cause]string{
	CauseNaturalExpiry: "natural expiry",
	CauseManualStop:    "manual stop",
	CauseAbandoned:     "abandoned",
}

func (c Cause) String() string {
	if n, ok := causeNames[c]; ok {
		return n
	}
	return "unknown"
}

// CompletionEvent is produced exactly once per armed session and consumed
// once by Resolve.
type CompletionEvent struct {
	Cause          Cause
	ElapsedSeconds int
	TargetSeconds  int // 0 = unbounded
}

// CompletionDetector translates clock transitions into at most one
// CompletionEvent per arm cycle. The single fired flag is the authoritative
// "have we already handled completion" — there is deliberately no second
// copy of it anywhere else.
type CompletionDetector struct {
	fired bool
}

// Arm resets the detector for a new session.
func (d *CompletionDetector) Arm() {
	d.fired = false
}

// Fired reports whether the completion event for the current arm cycle has
// already been emitted.
func (d *CompletionDetector) Fired() bool { return d.fired }

// ObserveTick inspects the clock after a tick. It emits a natural-expiry
// event when a bounded clock reaches zero remaining, once.
func (d *CompletionDetector) ObserveTick(c *Clock) (CompletionEvent, bool) {
	if d.fired {
		return CompletionEvent{}, false
	}
	remaining, bounded := c.Remaining()
	if !bounded || remaining > 0 {
		return CompletionEvent{}, false
	}
	d.fired = true
	return CompletionEvent{
		Cause:          CauseNaturalExpiry,
		ElapsedSeconds: c.Elapsed(),
		TargetSeconds:  c.target,
	}, true
}

// ObserveStop handles an explicit manual stop. A stop at zero elapsed is a
// cancel, not a completion, and emits nothing.
func (d *CompletionDetector) ObserveStop(c *Clock) (CompletionEvent, bool) {
	if d.fired || c.Elapsed() == 0 {
		return CompletionEvent{}, false
	}
	d.fired = true
	return CompletionEvent{
		Cause:          CauseManualStop,
		ElapsedSeconds: c.Elapsed(),
		TargetSeconds:  c.target,
	}, true
}

// ObserveTeardown handles owning-component teardown while the session is
// still running. It exists to prevent silent session loss on unmount.
func (d *CompletionDetector) ObserveTeardown(c *Clock) (CompletionEvent, bool) {
	if d.fired || !c.Running() || c.Elapsed() == 0 {
		return CompletionEvent{}, false
	}
	d.fired = true
	return CompletionEvent{
		Cause:          CauseAbandoned,
		ElapsedSeconds: c.Elapsed(),
		TargetSeconds:  c.target,
	}, true
}
