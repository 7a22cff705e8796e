package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vincenthorn/kasina/internal/store"
)

type statsModel struct {
	store  *store.Store
	width  int
	height int

	summaries    []store.DailySummary
	totalCount   int
	totalSeconds int64
	offset       int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newStatsModel(s *store.Store) statsModel {
	return statsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (st *statsModel) setSize(w, h int) {
	st.width = w
	st.height = h
}

type statsDataMsg struct {
	summaries    []store.DailySummary
	totalCount   int
	totalSeconds int64
}

func (st statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := st.dateRange()
		summaries, _ := st.store.DailyMinutes(from, to)
		count, total, _ := st.store.TotalStats()
		return statsDataMsg{summaries: summaries, totalCount: count, totalSeconds: total}
	}
}

func (st statsModel) dateRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-7*st.offset)
	start := end.AddDate(0, 0, -7)
	return start, end
}

func (st statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		st.summaries = msg.summaries
		st.totalCount = msg.totalCount
		st.totalSeconds = msg.totalSeconds
		st.buildChart()
		return st, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			st.offset++
			return st, st.refresh()
		case key.Matches(msg, keys.Down):
			if st.offset > 0 {
				st.offset--
			}
			return st, st.refresh()
		}
	}
	return st, nil
}

func (st *statsModel) buildChart() {
	chartWidth := st.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if st.height > 30 {
		chartHeight = 16
	}

	st.chart = barchart.New(chartWidth, chartHeight)

	from, to := st.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		label := d.Format("Mon 02")

		var values []barchart.BarValue
		for _, s := range st.summaries {
			if s.Date == dateStr {
				minutes := float64(s.TotalSeconds) / 60.0
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(kasinaColor(s.KasinaType)))
				values = append(values, barchart.BarValue{
					Name:  s.KasinaType,
					Value: minutes,
					Style: style,
				})
			}
		}

		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: values,
		})
	}

	st.chart.PushAll(bars)
	st.chart.Draw()
}

func (st statsModel) view() string {
	w := st.width - 4

	from, to := st.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", mutedStyle.Render("minutes/day"), "  ", dateLabel,
	)

	chartView := st.chart.View()
	legend := st.renderLegend()
	totals := highlightStyle.Render(fmt.Sprintf("  %d sessions, %s total",
		st.totalCount, formatSeconds(st.totalSeconds)))
	nav := mutedStyle.Render("  ↑/↓: earlier/later week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", legend, "", totals, "", nav,
		),
	)
}

func (st statsModel) renderLegend() string {
	seen := make(map[string]bool)
	var items []string
	for _, s := range st.summaries {
		if seen[s.KasinaType] {
			continue
		}
		seen[s.KasinaType] = true
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(kasinaColor(s.KasinaType))).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, s.KasinaType))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
