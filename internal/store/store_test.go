package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testSession builds a session starting the given number of minutes ago.
func testSession(key, kasina string, duration, minutesAgo int) Session {
	return Session{
		Key:             key,
		KasinaType:      kasina,
		DurationSeconds: duration,
		StartedAt:       time.Now().UTC().Add(time.Duration(-minutesAgo) * time.Minute),
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/kasina.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Sessions
// ============================================================

func TestPutAndGetSession(t *testing.T) {
	s := newTestStore(t)
	in := testSession("2026-08-23T07:00:00Z/breath", "breath", 600, 30)
	if err := s.PutSession(in); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSession(in.Key)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.KasinaType != "breath" || got.DurationSeconds != 600 {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.Synced {
		t.Fatal("new session should start unsynced")
	}
	if got.SyncAttempts != 0 {
		t.Fatalf("new session should have 0 attempts, got %d", got.SyncAttempts)
	}
	if got.StartedAt.IsZero() {
		t.Fatal("StartedAt should round-trip")
	}
}

func TestGetSessionMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetSession("no-such-key")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing session, got %+v", got)
	}
}

func TestPutSessionIdempotent(t *testing.T) {
	s := newTestStore(t)
	in := testSession("k1", "breath", 300, 10)
	s.PutSession(in)
	in.DurationSeconds = 360
	if err := s.PutSession(in); err != nil {
		t.Fatalf("re-put of same key should upsert: %v", err)
	}

	sessions, _ := s.ListSessions(0)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 row after duplicate put, got %d", len(sessions))
	}
	if sessions[0].DurationSeconds != 360 {
		t.Fatalf("upsert should refresh duration, got %d", sessions[0].DurationSeconds)
	}
}

func TestPutSessionNeverUnsyncs(t *testing.T) {
	s := newTestStore(t)
	in := testSession("k1", "breath", 300, 10)
	s.PutSession(in)
	s.MarkSynced("k1")

	// A duplicate local write must not flip the synced flag back.
	s.PutSession(in)
	got, _ := s.GetSession("k1")
	if !got.Synced {
		t.Fatal("duplicate put flipped synced back to false")
	}
}

func TestMarkSynced(t *testing.T) {
	s := newTestStore(t)
	s.PutSession(testSession("k1", "breath", 300, 10))
	if err := s.MarkSynced("k1"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetSession("k1")
	if !got.Synced {
		t.Fatal("session should be synced")
	}
}

func TestIncrementSyncAttempts(t *testing.T) {
	s := newTestStore(t)
	s.PutSession(testSession("k1", "breath", 300, 10))
	s.IncrementSyncAttempts("k1")
	s.IncrementSyncAttempts("k1")
	got, _ := s.GetSession("k1")
	if got.SyncAttempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", got.SyncAttempts)
	}
}

func TestListSessionsOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	s.PutSession(testSession("old", "breath", 300, 60))
	s.PutSession(testSession("mid", "candle flame", 600, 30))
	s.PutSession(testSession("new", "color disc", 120, 5))

	sessions, err := s.ListSessions(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].Key != "new" || sessions[2].Key != "old" {
		t.Fatalf("expected newest first, got %s..%s", sessions[0].Key, sessions[2].Key)
	}

	limited, _ := s.ListSessions(2)
	if len(limited) != 2 {
		t.Fatalf("expected 2 with limit, got %d", len(limited))
	}
}

func TestListSessionsEmpty(t *testing.T) {
	s := newTestStore(t)
	sessions, err := s.ListSessions(0)
	if err != nil {
		t.Fatal(err)
	}
	if sessions != nil {
		t.Fatalf("expected nil slice, got %d items", len(sessions))
	}
}

func TestListUnsynced(t *testing.T) {
	s := newTestStore(t)
	s.PutSession(testSession("a", "breath", 300, 90))
	s.PutSession(testSession("b", "breath", 300, 60))
	s.PutSession(testSession("c", "breath", 300, 30))
	s.MarkSynced("b")

	unsynced, err := s.ListUnsynced()
	if err != nil {
		t.Fatal(err)
	}
	if len(unsynced) != 2 {
		t.Fatalf("expected 2 unsynced, got %d", len(unsynced))
	}
	// Oldest first: recovery replays in original order.
	if unsynced[0].Key != "a" || unsynced[1].Key != "c" {
		t.Fatalf("unexpected order: %s, %s", unsynced[0].Key, unsynced[1].Key)
	}
}

func TestDailyMinutes(t *testing.T) {
	s := newTestStore(t)
	s.PutSession(testSession("k1", "breath", 600, 10))
	s.PutSession(testSession("k2", "breath", 300, 20))
	s.PutSession(testSession("k3", "candle flame", 900, 30))

	now := time.Now().UTC()
	from := now.Add(-24 * time.Hour)
	to := now.Add(time.Hour)
	summaries, err := s.DailyMinutes(from, to)
	if err != nil {
		t.Fatal(err)
	}

	totals := make(map[string]int64)
	counts := make(map[string]int)
	for _, ds := range summaries {
		totals[ds.KasinaType] += ds.TotalSeconds
		counts[ds.KasinaType] += ds.SessionCount
	}
	if totals["breath"] != 900 || counts["breath"] != 2 {
		t.Fatalf("breath totals = %d/%d, want 900/2", totals["breath"], counts["breath"])
	}
	if totals["candle flame"] != 900 || counts["candle flame"] != 1 {
		t.Fatalf("candle flame totals = %d/%d, want 900/1", totals["candle flame"], counts["candle flame"])
	}
}

func TestTotalStats(t *testing.T) {
	s := newTestStore(t)
	count, total, err := s.TotalStats()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 || total != 0 {
		t.Fatalf("empty store stats = %d/%d", count, total)
	}

	s.PutSession(testSession("k1", "breath", 600, 10))
	s.PutSession(testSession("k2", "breath", 300, 20))
	count, total, _ = s.TotalStats()
	if count != 2 || total != 900 {
		t.Fatalf("stats = %d/%d, want 2/900", count, total)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSeededDefaults(t *testing.T) {
	s := newTestStore(t)
	v, err := s.GetSetting("rounding_threshold")
	if err != nil {
		t.Fatal(err)
	}
	if v != "31" {
		t.Fatalf("rounding_threshold = %q, want 31", v)
	}
	v, _ = s.GetSetting("near_complete_ratio")
	if v != "90" {
		t.Fatalf("near_complete_ratio = %q, want 90", v)
	}
}

func TestSetAndGetSetting(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting("server_url", "https://api.example.com"); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSetting("server_url")
	if err != nil {
		t.Fatal(err)
	}
	if v != "https://api.example.com" {
		t.Fatalf("server_url = %q", v)
	}
}

func TestGetSettingMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nope")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) < 7 {
		t.Fatalf("expected seeded defaults, got %d settings", len(settings))
	}
}

func TestClientIDStable(t *testing.T) {
	s := newTestStore(t)
	id1, err := s.ClientID()
	if err != nil {
		t.Fatal(err)
	}
	if id1 == "" {
		t.Fatal("empty client id")
	}
	id2, _ := s.ClientID()
	if id1 != id2 {
		t.Fatalf("client id not stable: %q vs %q", id1, id2)
	}
}
