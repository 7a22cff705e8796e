package store

import (
	"database/sql"
	"fmt"
	"time"
)

// PutSession upserts a session row keyed by its idempotency key. Writing
// the same key again refreshes the payload but never flips a synced row
// back to unsynced.
func (s *Store) PutSession(sess Session) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_key, kasina_type, duration, started_at, synced)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_key) DO UPDATE SET
		   kasina_type = excluded.kasina_type,
		   duration    = excluded.duration,
		   started_at  = excluded.started_at`,
		sess.Key, sess.KasinaType, sess.DurationSeconds,
		sess.StartedAt.UTC().Format(time.RFC3339), boolToInt(sess.Synced),
	)
	if err != nil {
		return fmt.Errorf("put session %q: %w", sess.Key, err)
	}
	return nil
}

// GetSession returns the session for key, or nil if none exists.
func (s *Store) GetSession(key string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT session_key, kasina_type, duration, started_at, synced, sync_attempts, created_at
		 FROM sessions WHERE session_key = ?`, key,
	)
	sess, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %q: %w", key, err)
	}
	return sess, nil
}

// MarkSynced flags a session as acknowledged by the remote endpoint.
func (s *Store) MarkSynced(key string) error {
	_, err := s.db.Exec(`UPDATE sessions SET synced = 1 WHERE session_key = ?`, key)
	if err != nil {
		return fmt.Errorf("mark synced %q: %w", key, err)
	}
	return nil
}

// IncrementSyncAttempts bumps the attempt counter for a session.
func (s *Store) IncrementSyncAttempts(key string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET sync_attempts = sync_attempts + 1 WHERE session_key = ?`, key,
	)
	if err != nil {
		return fmt.Errorf("increment sync attempts %q: %w", key, err)
	}
	return nil
}

// ListSessions returns the most recent sessions, newest first. limit <= 0
// means no limit.
func (s *Store) ListSessions(limit int) ([]Session, error) {
	query := `SELECT session_key, kasina_type, duration, started_at, synced, sync_attempts, created_at
	          FROM sessions ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListUnsynced returns the recovery records: sessions not yet acknowledged
// by the remote endpoint, oldest first.
func (s *Store) ListUnsynced() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT session_key, kasina_type, duration, started_at, synced, sync_attempts, created_at
		 FROM sessions WHERE synced = 0 ORDER BY started_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list unsynced: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// DailyMinutes returns per-day, per-kasina-type totals within [from, to).
func (s *Store) DailyMinutes(from, to time.Time) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT date(started_at) AS day, kasina_type,
		       COALESCE(SUM(duration), 0), COUNT(*)
		FROM sessions
		WHERE started_at >= ? AND started_at < ?
		GROUP BY day, kasina_type
		ORDER BY day, kasina_type`,
		from.Format(time.RFC3339), to.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily minutes: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var ds DailySummary
		if err := rows.Scan(&ds.Date, &ds.KasinaType, &ds.TotalSeconds, &ds.SessionCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}

// TotalStats returns the all-time session count and total recorded seconds.
func (s *Store) TotalStats() (count int, totalSeconds int64, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(duration), 0) FROM sessions`,
	).Scan(&count, &totalSeconds)
	return
}

func scanSession(scan func(...any) error) (*Session, error) {
	sess := &Session{}
	var startedAt, createdAt string
	var synced int
	err := scan(&sess.Key, &sess.KasinaType, &sess.DurationSeconds,
		&startedAt, &synced, &sess.SyncAttempts, &createdAt)
	if err != nil {
		return nil, err
	}
	sess.Synced = synced != 0
	sess.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sess, nil
}

func collectSessions(rows *sql.Rows) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
