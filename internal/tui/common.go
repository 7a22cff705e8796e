package tui

import (
	"fmt"
	"time"

	"github.com/vincenthorn/kasina/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewSession viewState = iota
	viewHistory
	viewStats
	viewSettings
)

var viewNames = []string{"Session", "History", "Stats", "Settings"}

// Kasina meditation objects offered by the session form. The color is
// used for the stats chart and the session orb.
var kasinaTypes = []string{
	"breath",
	"candle flame",
	"blue disc",
	"red disc",
	"white light",
	"earth",
}

var kasinaColors = map[string]string{
	"breath":       "#7AA2F7",
	"candle flame": "#F39C12",
	"blue disc":    "#3B82F6",
	"red disc":     "#E74C3C",
	"white light":  "#C0CAF5",
	"earth":        "#8B6F47",
}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

// sessionSavedMsg is emitted after the persist pipeline finishes so other
// views can refresh.
type sessionSavedMsg struct {
	durationSeconds int
	err             error
}

type sessionDiscardedMsg struct{}

type completingMsg struct {
	cause timer.Cause
}

type resyncDoneMsg struct {
	resynced int
	err      error
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatClock renders a session clock: mm:ss under an hour, h:mm:ss above.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(secs int) string {
	if secs%60 == 0 {
		return fmt.Sprintf("%d min", secs/60)
	}
	return formatClock(secs)
}
