package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vincenthorn/kasina/internal/persist"
	"github.com/vincenthorn/kasina/internal/store"
)

const historyLimit = 50

type historyModel struct {
	store     *store.Store
	persister *persist.Persister
	width     int
	height    int

	sessions []store.Session
	cursor   int
}

func newHistoryModel(s *store.Store, p *persist.Persister) historyModel {
	return historyModel{store: s, persister: p}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

type historyDataMsg struct {
	sessions []store.Session
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, _ := h.store.ListSessions(historyLimit)
		return historyDataMsg{sessions: sessions}
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.sessions = msg.sessions
		if h.cursor >= len(h.sessions) {
			h.cursor = max(0, len(h.sessions)-1)
		}
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.sessions)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.Resync):
			return h, h.resync()
		}
	}
	return h, nil
}

// resync re-runs the recovery sweep on demand, for when the network came
// back after a failed save.
func (h historyModel) resync() tea.Cmd {
	return func() tea.Msg {
		resynced, err := h.persister.Recover(context.Background())
		return resyncDoneMsg{resynced: resynced, err: err}
	}
}

func (h historyModel) view() string {
	w := h.width - 4

	title := titleStyle.Render("History")

	if len(h.sessions) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "",
				mutedStyle.Render("No sessions recorded yet")),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-17s %-14s %10s  %s", "Started", "Kasina", "Duration", "Sync")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 50))))

	visible := h.sessions
	maxRows := h.height - 10
	if maxRows > 0 && len(visible) > maxRows {
		visible = visible[:maxRows]
	}

	for i, s := range visible {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		badge := successStyle.Render("●")
		if !s.Synced {
			badge = warningStyle.Render("○")
		}

		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(kasinaColor(s.KasinaType))).Render("●")
		rows = append(rows, style.Render(fmt.Sprintf("%s%-17s %s %-12s %10s  ",
			cursor,
			s.StartedAt.Local().Format("Jan 02 15:04"),
			dot, s.KasinaType,
			formatClock(s.DurationSeconds),
		))+badge)
	}

	unsynced := 0
	for _, s := range h.sessions {
		if !s.Synced {
			unsynced++
		}
	}
	rows = append(rows, "")
	if unsynced > 0 {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("  %d session(s) awaiting sync", unsynced))+
			mutedStyle.Render("  r: resync"))
	} else {
		rows = append(rows, mutedStyle.Render("  All sessions synced"))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func kasinaColor(kasina string) string {
	if c, ok := kasinaColors[kasina]; ok {
		return c
	}
	return string(colorPrimary)
}
