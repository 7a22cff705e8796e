package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/vincenthorn/kasina/internal/store"
	"github.com/vincenthorn/kasina/internal/timer"
)

// controllerFeed collects controller callback events so the value-copied
// bubbletea model can drain them after each controller call. The pipeline
// is synchronous, so events are always complete by the time we drain.
type controllerFeed struct {
	completing []timer.Cause
	persisted  []persistOutcome
}

type persistOutcome struct {
	durationSeconds int
	err             error
}

// sessionModel owns the TimerController and renders the meditation view.
type sessionModel struct {
	store  *store.Store
	ctrl   *timer.Controller
	feed   *controllerFeed
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	kasina  *string
	minutes *string

	// Presentation of the last finished session
	lastCause  string
	lastResult string
}

func newSessionModel(s *store.Store, ctrl *timer.Controller) sessionModel {
	feed := &controllerFeed{}
	ctrl.SetCallbacks(timer.Callbacks{
		OnCompleting: func(c timer.Cause) {
			feed.completing = append(feed.completing, c)
		},
		OnPersisted: func(d int, err error) {
			feed.persisted = append(feed.persisted, persistOutcome{durationSeconds: d, err: err})
		},
	})

	kasina, minutes := "", ""
	return sessionModel{
		store:   s,
		ctrl:    ctrl,
		feed:    feed,
		kasina:  &kasina,
		minutes: &minutes,
	}
}

func (m *sessionModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m sessionModel) running() bool {
	return m.ctrl.State() == timer.StateRunning
}

func (m sessionModel) elapsed() int {
	return m.ctrl.Snapshot().Elapsed
}

// teardown is invoked when the program exits. A still-running session is
// completed as abandoned and persisted before the terminal is released.
func (m sessionModel) teardown() {
	m.ctrl.Teardown()
}

func (m sessionModel) update(msg tea.Msg) (sessionModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		if m.ctrl.State() != timer.StateRunning {
			return m, nil
		}
		if err := m.ctrl.Tick(); err != nil {
			return m, statusCmd(fmt.Sprintf("Timer error: %v", err), true)
		}
		return m, m.drain()

	case completingMsg:
		m.lastCause = msg.cause.String()
		return m, nil

	case sessionSavedMsg:
		m.lastResult = persistSummary(msg)
		return m, nil

	case sessionDiscardedMsg:
		m.lastResult = "Too short to record"
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if m.ctrl.State() == timer.StateIdle {
				return m.showForm()
			}
		case key.Matches(msg, keys.Stop):
			if m.ctrl.State() == timer.StateRunning {
				if err := m.ctrl.Stop(); err != nil {
					return m, statusCmd(fmt.Sprintf("Timer error: %v", err), true)
				}
				return m, m.drain()
			}
		}
	}
	return m, nil
}

// drain converts buffered controller events into bubbletea messages.
func (m sessionModel) drain() tea.Cmd {
	var cmds []tea.Cmd
	for _, cause := range m.feed.completing {
		c := cause
		cmds = append(cmds, func() tea.Msg { return completingMsg{cause: c} })
	}
	for _, out := range m.feed.persisted {
		o := out
		if o.durationSeconds == 0 && o.err == nil {
			cmds = append(cmds, func() tea.Msg { return sessionDiscardedMsg{} })
			continue
		}
		cmds = append(cmds, func() tea.Msg {
			return sessionSavedMsg{durationSeconds: o.durationSeconds, err: o.err}
		})
	}
	m.feed.completing = nil
	m.feed.persisted = nil
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m sessionModel) showForm() (sessionModel, tea.Cmd) {
	*m.kasina = m.strSetting("default_kasina", "breath")
	*m.minutes = strconv.Itoa(m.intSetting("default_target", 600) / 60)

	var options []huh.Option[string]
	for _, k := range kasinaTypes {
		options = append(options, huh.NewOption(k, k))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Kasina").Options(options...).Value(m.kasina),
			huh.NewInput().Title("Duration (min, 0 = open-ended)").Value(m.minutes).
				Validate(func(v string) error {
					n, err := strconv.Atoi(v)
					if err != nil || n < 0 {
						return fmt.Errorf("enter a whole number of minutes")
					}
					return nil
				}),
		).Title("New Session"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	m.lastCause = ""
	m.lastResult = ""
	return m, m.form.Init()
}

func (m sessionModel) updateForm(msg tea.Msg) (sessionModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m.startSession()
	}

	return m, cmd
}

func (m sessionModel) startSession() (sessionModel, tea.Cmd) {
	minutes, _ := strconv.Atoi(*m.minutes)

	cfg := timer.Config{
		TargetSeconds:            minutes * 60,
		MinRecordableSeconds:     m.intSetting("min_recordable", 10),
		RoundingThresholdSeconds: m.intSetting("rounding_threshold", 31),
		NearCompleteRatio:        float64(m.intSetting("near_complete_ratio", 90)) / 100,
		PersistTimeout:           time.Duration(m.intSetting("persist_timeout", 5)) * time.Second,
	}

	if err := m.ctrl.Configure(cfg, *m.kasina); err != nil {
		return m, statusCmd(fmt.Sprintf("Configure error: %v", err), true)
	}
	if err := m.ctrl.Start(); err != nil {
		return m, statusCmd(fmt.Sprintf("Start error: %v", err), true)
	}
	return m, statusCmd("Session started", false)
}

func (m sessionModel) intSetting(key string, fallback int) int {
	if v, err := m.store.GetSetting(key); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (m sessionModel) strSetting(key, fallback string) string {
	if v, err := m.store.GetSetting(key); err == nil && v != "" {
		return v
	}
	return fallback
}

func (m sessionModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Session")
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	title := titleStyle.Render("Meditation")

	var timeDisplay, label, hint string
	snap := m.ctrl.Snapshot()

	switch m.ctrl.State() {
	case timer.StateRunning:
		orb := m.renderOrb(snap.Elapsed)
		if snap.Bounded {
			timeDisplay = clockRunningStyle.Width(w - 6).Render(formatClock(snap.Remaining))
			label = mutedStyle.Render(fmt.Sprintf("%s  %s  %s elapsed", orb, *m.kasina, formatClock(snap.Elapsed)))
		} else {
			timeDisplay = clockRunningStyle.Width(w - 6).Render(formatClock(snap.Elapsed))
			label = mutedStyle.Render(fmt.Sprintf("%s  %s  open-ended", orb, *m.kasina))
		}
		hint = mutedStyle.Render("x: end session")
	default:
		timeDisplay = clockStyle.Width(w - 6).Render(formatClock(m.intSetting("default_target", 600)))
		label = mutedStyle.Render("Ready to sit")
		hint = mutedStyle.Render("s: start session")
	}

	rows := []string{title, "", timeDisplay, label, ""}
	if m.lastCause != "" {
		rows = append(rows, mutedStyle.Render("Ended: "+m.lastCause))
	}
	if m.lastResult != "" {
		rows = append(rows, highlightStyle.Render(m.lastResult))
	}
	rows = append(rows, "", hint)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, rows...),
	)
}

// renderOrb breathes: a slow two-phase pulse driven by the elapsed count.
func (m sessionModel) renderOrb(elapsed int) string {
	color, ok := kasinaColors[*m.kasina]
	if !ok {
		color = string(colorPrimary)
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	if (elapsed/4)%2 == 0 {
		return style.Render("●")
	}
	return style.Render("○")
}

func persistSummary(msg sessionSavedMsg) string {
	if msg.err != nil {
		return errorStyle.Render(fmt.Sprintf("Saved locally, sync failed: %v", msg.err))
	}
	return successStyle.Render(fmt.Sprintf("Recorded %s ✓", formatMinutes(msg.durationSeconds)))
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}
