package timer

import (
	"context"
	"time"
)

// ResolvedSession is the record handed to the persister: the post-rounding
// duration plus the session metadata identifying it.
type ResolvedSession struct {
	SessionKey      string
	KasinaType      string
	DurationSeconds int
	StartedAt       time.Time
}

// SessionKey derives the idempotency key for one logical session attempt.
// The same start instant and kasina type always map to the same key, so a
// duplicated completion can never create a second record.
func SessionKey(startedAt time.Time, kasinaType string) string {
	return startedAt.UTC().Format(time.RFC3339) + "/" + kasinaType
}

// SessionSink durably records a resolved session at most once per session
// key. Implemented by the persist package; the core only knows this
// interface.
type SessionSink interface {
	Persist(ctx context.Context, s ResolvedSession) error
}
