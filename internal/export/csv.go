package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/vincenthorn/kasina/internal/store"
)

func ToCSV(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Key", "Kasina", "Started", "Duration (s)", "Duration", "Synced"}); err != nil {
		return err
	}

	for _, s := range sessions {
		synced := "no"
		if s.Synced {
			synced = "yes"
		}
		row := []string{
			s.Key,
			s.KasinaType,
			s.StartedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", s.DurationSeconds),
			formatDuration(int64(s.DurationSeconds)),
			synced,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
