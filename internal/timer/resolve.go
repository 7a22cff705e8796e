package timer

// Resolve computes the canonical number of seconds to persist for a
// completed session. 0 means "do not persist".
//
// Rules, in order:
//  1. below the minimum recordable floor: discard.
//  2. natural expiry: the configured target is authoritative, even if the
//     elapsed count drifted by a tick.
//  3. manual stop / abandoned: a bounded session at or above the
//     near-complete ratio is credited the full target; anything else is
//     rounded up to the next whole minute, except that a partial first
//     minute below the rounding threshold is discarded.
//
// Resolve is total and side-effect-free.
func Resolve(ev CompletionEvent, cfg Config) int {
	if ev.ElapsedSeconds < cfg.MinRecordableSeconds {
		return 0
	}

	if ev.Cause == CauseNaturalExpiry {
		return cfg.TargetSeconds
	}

	if cfg.Bounded() {
		ratio := float64(ev.ElapsedSeconds) / float64(cfg.TargetSeconds)
		if ratio >= cfg.NearCompleteRatio {
			return cfg.TargetSeconds
		}
	}

	m := ev.ElapsedSeconds / 60
	r := ev.ElapsedSeconds % 60
	if m == 0 && r < cfg.RoundingThresholdSeconds {
		return 0
	}
	if r > 0 {
		return (m + 1) * 60
	}
	return m * 60
}
