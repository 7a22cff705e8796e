package store

import "time"

// Session is one recorded meditation session, keyed by its idempotency key.
// Synced reports whether the remote endpoint has acknowledged it.
type Session struct {
	Key             string
	KasinaType      string
	DurationSeconds int
	StartedAt       time.Time
	Synced          bool
	SyncAttempts    int
	CreatedAt       time.Time
}

type Setting struct {
	Key   string
	Value string
}

// DailySummary is aggregated meditation time per kasina type per day.
type DailySummary struct {
	Date         string
	KasinaType   string
	TotalSeconds int64
	SessionCount int
}
