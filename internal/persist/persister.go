package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vincenthorn/kasina/internal/api"
	"github.com/vincenthorn/kasina/internal/store"
	"github.com/vincenthorn/kasina/internal/timer"
)

// Status is the lifecycle of one save attempt.
type Status int

const (
	StatusPending Status = iota
	StatusSaved
	StatusFailed
)

// Writer is the session-storage endpoint as the persister sees it.
// Implemented by api.Client.
type Writer interface {
	WriteSession(ctx context.Context, rec api.Record) error
}

// Options tune the persister. Zero values pick defaults.
type Options struct {
	// RetryBackoff is the fixed wait before the single retry of a
	// transient failure.
	RetryBackoff time.Duration
}

// Persister guarantees at-most-one durable write per session key. The
// local fallback row is written before the network attempt, so a crash
// between the two still leaves a recovery record behind.
type Persister struct {
	store   *store.Store
	writer  Writer
	backoff time.Duration

	mu       sync.Mutex
	attempts map[string]Status
}

// New creates a Persister over the local store and remote writer.
func New(s *store.Store, w Writer, opts Options) *Persister {
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Persister{
		store:    s,
		writer:   w,
		backoff:  backoff,
		attempts: make(map[string]Status),
	}
}

// Persist durably records one resolved session. Duplicate calls for a key
// that is already saved or still in flight return nil without a network
// call; that silence is deliberate — duplicates are guarded, not errors.
func (p *Persister) Persist(ctx context.Context, sess timer.ResolvedSession) error {
	key := sess.SessionKey

	p.mu.Lock()
	if st, ok := p.attempts[key]; ok && st != StatusFailed {
		p.mu.Unlock()
		return nil
	}
	p.attempts[key] = StatusPending
	p.mu.Unlock()

	// A row the endpoint already acknowledged needs nothing further.
	if existing, err := p.store.GetSession(key); err == nil && existing != nil && existing.Synced {
		p.setStatus(key, StatusSaved)
		return nil
	}

	// Local fallback first: recoverable even if we crash mid-write.
	if err := p.store.PutSession(store.Session{
		Key:             key,
		KasinaType:      sess.KasinaType,
		DurationSeconds: sess.DurationSeconds,
		StartedAt:       sess.StartedAt,
	}); err != nil {
		p.setStatus(key, StatusFailed)
		return fmt.Errorf("local fallback write: %w", err)
	}

	if err := p.write(ctx, sess); err != nil {
		p.setStatus(key, StatusFailed)
		return err
	}

	if err := p.store.MarkSynced(key); err != nil {
		// The server has the record; the worst case here is one extra
		// idempotent resync on next startup.
		p.setStatus(key, StatusSaved)
		return nil
	}
	p.setStatus(key, StatusSaved)
	return nil
}

// write issues the network call, retrying once after a fixed backoff on
// transient failure.
func (p *Persister) write(ctx context.Context, sess timer.ResolvedSession) error {
	rec := api.Record{
		KasinaType:      sess.KasinaType,
		DurationSeconds: sess.DurationSeconds,
		StartedAt:       sess.StartedAt.UTC().Format(time.RFC3339),
		SessionKey:      sess.SessionKey,
	}

	p.store.IncrementSyncAttempts(sess.SessionKey)
	err := p.writer.WriteSession(ctx, rec)
	if err == nil {
		return nil
	}
	if !errors.Is(err, api.ErrTransient) {
		return fmt.Errorf("session write: %w", err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("session write: %w", ctx.Err())
	case <-time.After(p.backoff):
	}

	p.store.IncrementSyncAttempts(sess.SessionKey)
	if err := p.writer.WriteSession(ctx, rec); err != nil {
		return fmt.Errorf("session write retry: %w", err)
	}
	return nil
}

// Recover sweeps unsynced fallback rows and re-attempts each, oldest
// first. It returns how many rows resynced; the first error is reported
// after the sweep finishes the remaining rows.
func (p *Persister) Recover(ctx context.Context) (int, error) {
	rows, err := p.store.ListUnsynced()
	if err != nil {
		return 0, fmt.Errorf("recovery sweep: %w", err)
	}

	var resynced int
	var firstErr error
	for _, row := range rows {
		err := p.Persist(ctx, timer.ResolvedSession{
			SessionKey:      row.Key,
			KasinaType:      row.KasinaType,
			DurationSeconds: row.DurationSeconds,
			StartedAt:       row.StartedAt,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		resynced++
	}
	return resynced, firstErr
}

// StatusOf reports the in-memory attempt status for a key.
func (p *Persister) StatusOf(key string) (Status, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.attempts[key]
	return st, ok
}

func (p *Persister) setStatus(key string, st Status) {
	p.mu.Lock()
	p.attempts[key] = st
	p.mu.Unlock()
}
