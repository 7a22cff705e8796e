package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/vincenthorn/kasina/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultTarget     *string
	defaultKasina     *string
	minRecordable     *string
	roundingThreshold *string
	nearCompleteRatio *string
	persistTimeout    *string
	serverURL         *string
}

func newSettingsModel(s *store.Store) settingsModel {
	dt, dk, mr, rt := "", "", "", ""
	nc, pt, su := "", "", ""
	return settingsModel{
		store:             s,
		defaultTarget:     &dt,
		defaultKasina:     &dk,
		minRecordable:     &mr,
		roundingThreshold: &rt,
		nearCompleteRatio: &nc,
		persistTimeout:    &pt,
		serverURL:         &su,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.defaultTarget = secsToMin(s.getVal("default_target", "600"))
	*s.defaultKasina = s.getVal("default_kasina", "breath")
	*s.minRecordable = s.getVal("min_recordable", "10")
	*s.roundingThreshold = s.getVal("rounding_threshold", "31")
	*s.nearCompleteRatio = s.getVal("near_complete_ratio", "90")
	*s.persistTimeout = s.getVal("persist_timeout", "5")
	*s.serverURL = s.getVal("server_url", "")

	var kasinaOptions []huh.Option[string]
	for _, k := range kasinaTypes {
		kasinaOptions = append(kasinaOptions, huh.NewOption(k, k))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default duration (min)").Value(s.defaultTarget),
			huh.NewSelect[string]().Title("Default kasina").
				Options(kasinaOptions...).Value(s.defaultKasina),
		).Title("Session"),
		huh.NewGroup(
			huh.NewInput().Title("Minimum recordable (s)").Value(s.minRecordable),
			huh.NewInput().Title("Rounding threshold (s)").Value(s.roundingThreshold),
			huh.NewInput().Title("Near-complete credit (%)").Value(s.nearCompleteRatio),
		).Title("Recording"),
		huh.NewGroup(
			huh.NewInput().Title("Server URL").Value(s.serverURL),
			huh.NewInput().Title("Write timeout (s)").Value(s.persistTimeout),
		).Title("Sync"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	s.store.SetSetting("default_target", minToSecs(*s.defaultTarget))
	s.store.SetSetting("default_kasina", *s.defaultKasina)
	s.store.SetSetting("min_recordable", *s.minRecordable)
	s.store.SetSetting("rounding_threshold", *s.roundingThreshold)
	s.store.SetSetting("near_complete_ratio", *s.nearCompleteRatio)
	s.store.SetSetting("persist_timeout", *s.persistTimeout)
	s.store.SetSetting("server_url", *s.serverURL)
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		if setting.Key == "client_id" {
			continue
		}
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "default_target":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case "min_recordable", "rounding_threshold", "persist_timeout":
		return v + " s"
	case "near_complete_ratio":
		return v + "%"
	case "server_url":
		if v == "" {
			return "(not configured)"
		}
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
