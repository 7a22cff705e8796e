package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/vincenthorn/kasina/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	Key         string `json:"session_key"`
	Kasina      string `json:"kasina_type"`
	StartedAt   string `json:"started_at"`
	DurationSec int    `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Synced      bool   `json:"synced"`
}

func ToJSON(sessions []store.Session, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		export.Sessions = append(export.Sessions, jsonSession{
			Key:         s.Key,
			Kasina:      s.KasinaType,
			StartedAt:   s.StartedAt.Local().Format(time.RFC3339),
			DurationSec: s.DurationSeconds,
			Duration:    formatDuration(int64(s.DurationSeconds)),
			Synced:      s.Synced,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
