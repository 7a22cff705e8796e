package timer

import (
	"context"
	"fmt"
	"time"
)

// State is the controller lifecycle. Completing is the short transient
// state between a completion event and the persist result.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateRunning
	StateCompleting
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateArmed:      "armed",
	StateRunning:    "running",
	StateCompleting: "completing",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Callbacks are how the controller reports to the owning UI. Any field may
// be nil. OnTick fires once per tick with the current clock values.
// OnCompleting fires on entering the completing state, before the persist
// attempt. OnPersisted fires once the pipeline finishes: a nil error with
// duration 0 means the session was too short and discarded.
type Callbacks struct {
	OnTick       func(elapsed, remaining int, bounded bool)
	OnCompleting func(cause Cause)
	OnPersisted  func(durationSeconds int, err error)
}

// Snapshot is the controller's current clock reading.
type Snapshot struct {
	Elapsed   int
	Remaining int
	Bounded   bool
	Running   bool
}

// Controller owns one Clock and one CompletionDetector and composes them
// with Resolve and a SessionSink into the session lifecycle
// Idle → Armed → Running → Completing → Idle.
//
// The completion pipeline (detect → resolve → persist) runs synchronously
// inside whichever Tick/Stop/Teardown call produced the event; the sink's
// network write is the only part that may block, bounded by
// Config.PersistTimeout.
type Controller struct {
	clock    Clock
	detector CompletionDetector
	sink     SessionSink

	state      State
	cfg        Config
	kasinaType string
	startedAt  time.Time
	callbacks  Callbacks
}

// NewController creates a controller persisting through sink.
func NewController(sink SessionSink) *Controller {
	return &Controller{sink: sink}
}

// SetCallbacks installs the UI callbacks. Call before Start.
func (tc *Controller) SetCallbacks(cb Callbacks) {
	tc.callbacks = cb
}

func (tc *Controller) State() State { return tc.state }

// Snapshot returns the current clock reading.
func (tc *Controller) Snapshot() Snapshot {
	remaining, bounded := tc.clock.Remaining()
	return Snapshot{
		Elapsed:   tc.clock.Elapsed(),
		Remaining: remaining,
		Bounded:   bounded,
		Running:   tc.clock.Running(),
	}
}

// Configure arms the controller for a new session. Idle → Armed.
func (tc *Controller) Configure(cfg Config, kasinaType string) error {
	if tc.state != StateIdle {
		return fmt.Errorf("configure in state %s: %w", tc.state, ErrInvalidState)
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	tc.cfg = cfg
	tc.kasinaType = kasinaType
	tc.clock.Arm(cfg)
	tc.detector.Arm()
	tc.state = StateArmed
	return nil
}

// Start begins the session. Armed → Running.
func (tc *Controller) Start() error {
	if tc.state != StateArmed {
		return fmt.Errorf("start in state %s: %w", tc.state, ErrInvalidState)
	}
	if err := tc.clock.Start(); err != nil {
		return err
	}
	tc.startedAt = time.Now()
	tc.state = StateRunning
	return nil
}

// Tick advances the session by one second. A tick that drives a bounded
// clock to zero runs the completion pipeline before returning.
func (tc *Controller) Tick() error {
	if tc.state != StateRunning {
		return fmt.Errorf("tick in state %s: %w", tc.state, ErrInvalidState)
	}
	if err := tc.clock.Tick(); err != nil {
		return err
	}

	snap := tc.Snapshot()
	if tc.callbacks.OnTick != nil {
		tc.callbacks.OnTick(snap.Elapsed, snap.Remaining, snap.Bounded)
	}

	if ev, ok := tc.detector.ObserveTick(&tc.clock); ok {
		tc.complete(ev)
	}
	return nil
}

// Stop ends the session explicitly. A stop before the first tick is a
// cancel: nothing is recorded and the controller returns to Idle.
func (tc *Controller) Stop() error {
	if tc.state != StateRunning {
		return fmt.Errorf("stop in state %s: %w", tc.state, ErrInvalidState)
	}
	tc.clock.Stop()
	ev, ok := tc.detector.ObserveStop(&tc.clock)
	if !ok {
		tc.Reset()
		return nil
	}
	tc.complete(ev)
	return nil
}

// Teardown is called when the owning UI goes away. A still-running,
// unfired session is completed as abandoned so it is never silently lost.
// Safe to call in any state.
func (tc *Controller) Teardown() {
	if tc.state != StateRunning {
		return
	}
	ev, ok := tc.detector.ObserveTeardown(&tc.clock)
	tc.clock.Stop()
	if ok {
		tc.complete(ev)
		return
	}
	tc.Reset()
}

// Reset returns the controller to Idle from any state. An in-flight
// persist is never aborted; the pipeline runs on the caller's stack and
// finishes before Reset can be reached.
func (tc *Controller) Reset() {
	tc.clock.Reset()
	tc.detector.Arm()
	tc.state = StateIdle
}

// complete runs the synchronous completion pipeline for one event.
func (tc *Controller) complete(ev CompletionEvent) {
	tc.state = StateCompleting
	if tc.callbacks.OnCompleting != nil {
		tc.callbacks.OnCompleting(ev.Cause)
	}

	duration := Resolve(ev, tc.cfg)

	var err error
	if duration > 0 && tc.sink != nil {
		ctx := context.Background()
		var cancel context.CancelFunc
		if tc.cfg.PersistTimeout > 0 {
			// Headroom for the persister's internal retry.
			ctx, cancel = context.WithTimeout(ctx, 3*tc.cfg.PersistTimeout)
			defer cancel()
		}
		err = tc.sink.Persist(ctx, ResolvedSession{
			SessionKey:      SessionKey(tc.startedAt, tc.kasinaType),
			KasinaType:      tc.kasinaType,
			DurationSeconds: duration,
			StartedAt:       tc.startedAt,
		})
	}

	if tc.callbacks.OnPersisted != nil {
		tc.callbacks.OnPersisted(duration, err)
	}
	tc.Reset()
}
