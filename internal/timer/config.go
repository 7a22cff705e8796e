package timer

import (
	"fmt"
	"time"
)

// Config is the immutable per-session setup. It is created when a session
// is configured and never mutated afterwards.
type Config struct {
	// TargetSeconds is the countdown length. 0 means unbounded count-up.
	TargetSeconds int

	// MinRecordableSeconds is the floor below which a session is discarded
	// instead of saved.
	MinRecordableSeconds int

	// RoundingThresholdSeconds: a partial first minute at or above this
	// threshold rounds up to a full minute; below it the session is
	// discarded.
	RoundingThresholdSeconds int

	// NearCompleteRatio: a manually stopped or abandoned bounded session
	// whose elapsed/target ratio is at or above this value is credited the
	// full target.
	NearCompleteRatio float64

	// PersistTimeout bounds the network write for the session record.
	PersistTimeout time.Duration
}

// Bounded reports whether the session has a fixed target duration.
func (c Config) Bounded() bool {
	return c.TargetSeconds > 0
}

func (c Config) validate() error {
	if c.TargetSeconds < 0 {
		return fmt.Errorf("target seconds %d: %w", c.TargetSeconds, ErrInvalidState)
	}
	if c.MinRecordableSeconds < 0 {
		return fmt.Errorf("min recordable %d: %w", c.MinRecordableSeconds, ErrInvalidState)
	}
	if c.RoundingThresholdSeconds < 0 || c.RoundingThresholdSeconds > 60 {
		return fmt.Errorf("rounding threshold %d: %w", c.RoundingThresholdSeconds, ErrInvalidState)
	}
	if c.NearCompleteRatio < 0 || c.NearCompleteRatio > 1 {
		return fmt.Errorf("near-complete ratio %v: %w", c.NearCompleteRatio, ErrInvalidState)
	}
	return nil
}
