package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vincenthorn/kasina/internal/store"
)

func sampleSessions() []store.Session {
	now := time.Now().UTC()
	return []store.Session{
		{
			Key:             "2026-08-23T07:00:00Z/breath",
			KasinaType:      "breath",
			DurationSeconds: 3600,
			StartedAt:       now.Add(-2 * time.Hour),
			Synced:          true,
			CreatedAt:       now,
		},
		{
			Key:             "2026-08-23T08:30:00Z/candle flame",
			KasinaType:      "candle flame",
			DurationSeconds: 1800,
			StartedAt:       now.Add(-30 * time.Minute),
			Synced:          false,
			CreatedAt:       now,
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	sessions := sampleSessions()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sessions, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 2 data rows
	if len(records) != 3 {
		t.Fatalf("expected 3 rows (1 header + 2 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"Key", "Kasina", "Started", "Duration (s)", "Duration", "Synced"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[1] != "breath" {
		t.Fatalf("Kasina = %q, want breath", row[1])
	}
	if row[3] != "3600" {
		t.Fatalf("Duration (s) = %q, want 3600", row[3])
	}
	if row[4] != "01:00:00" {
		t.Fatalf("Duration = %q, want 01:00:00", row[4])
	}
	if row[5] != "yes" {
		t.Fatalf("Synced = %q, want yes", row[5])
	}

	unsyncedRow := records[2]
	if unsyncedRow[5] != "no" {
		t.Fatalf("Synced = %q, want no", unsyncedRow[5])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(sampleSessions(), "/nonexistent-dir/test.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	sessions := sampleSessions()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sessions, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var out jsonExport
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if out.Count != 2 || len(out.Sessions) != 2 {
		t.Fatalf("count = %d, sessions = %d, want 2/2", out.Count, len(out.Sessions))
	}
	if out.ExportedAt == "" {
		t.Fatal("exported_at missing")
	}

	first := out.Sessions[0]
	if first.Kasina != "breath" || first.DurationSec != 3600 || !first.Synced {
		t.Fatalf("unexpected first session: %+v", first)
	}
	if first.Duration != "01:00:00" {
		t.Fatalf("Duration = %q, want 01:00:00", first.Duration)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var out jsonExport
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 0 {
		t.Fatalf("count = %d, want 0", out.Count)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{600, "00:10:00"},
		{3661, "01:01:01"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Fatalf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
