package launcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/meghashyamc/migemosearch/plugin"
	"github.com/meghashyamc/migemosearch/services/i18n"
	"github.com/meghashyamc/migemosearch/services/query"
	"github.com/meghashyamc/migemosearch/services/settings"
)

const (
	maxSearchCountStep = 10
	maxSearchCountMax  = 1000
)

// Plugin is everything the launcher needs from the search plugin.
type Plugin interface {
	plugin.Queryable
	plugin.MenuProvider
	plugin.SettingsProvider
	Title() string
	Translator() i18n.Translator
}

type mode int

const (
	modeSearch mode = iota
	modeMenu
	modeSettings
)

const (
	settingUseLocation = iota
	settingMaxSearchCount
	settingsCount
)

type queryDoneMsg struct {
	requestID uint64
	records   []query.Record
}

type actionDoneMsg struct {
	hide bool
	err  error
}

// Model is the Bubble Tea model for the launcher window.
type Model struct {
	plugin     Plugin
	translator i18n.Translator
	notifier   *Notifier
	input      textinput.Model

	mode      mode
	records   []query.Record
	selection int
	menu      []query.Record
	menuTitle string
	menuIndex int

	settingIndex int
	draft        settings.Settings

	status    string
	err       error
	requestID uint64
	// ctx spans every query of the window and is cancelled only when it quits.
	ctx       context.Context
	cancel    context.CancelFunc
	loading   bool
	quitting  bool

	width  int
	height int
}

func NewModel(p Plugin, notifier *Notifier) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = p.Title()
	input.Focus()
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		plugin:     p,
		translator: p.Translator(),
		notifier:   notifier,
		input:      input,
		selection:  -1,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.notifier.wait())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeMenu:
			return m.handleMenuKey(msg)
		case modeSettings:
			return m.handleSettingsKey(msg)
		default:
			return m.handleSearchKey(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(0, msg.Width-len(m.input.Prompt)-1)
		return m, nil

	case queryDoneMsg:
		if msg.requestID != m.requestID {
			return m, nil
		}
		m.loading = false
		m.records = msg.records
		m.selection = 0
		if len(m.records) == 0 {
			m.selection = -1
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.hide {
			m.quitting = true
			m.cancelQueries()
			return m, tea.Quit
		}
		return m, nil

	case notifyMsg:
		m.status = msg.Title
		if msg.SubTitle != "" {
			m.status += ": " + msg.SubTitle
		}
		return m, m.notifier.wait()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.quitting = true
		m.cancelQueries()
		return m, tea.Quit

	case tea.KeyEnter:
		if record, ok := m.selected(); ok {
			return m, runAction(record.Action)
		}
		return m, nil

	case tea.KeyUp, tea.KeyCtrlP:
		if m.selection > 0 {
			m.selection--
		}
		return m, nil

	case tea.KeyDown, tea.KeyCtrlN:
		if m.selection < len(m.records)-1 {
			m.selection++
		}
		return m, nil

	case tea.KeyCtrlK:
		record, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.menu = m.plugin.ContextMenus(record)
		if len(m.menu) == 0 {
			return m, nil
		}
		m.menuTitle = record.Title
		m.menuIndex = 0
		m.mode = modeMenu
		return m, nil

	case tea.KeyCtrlO:
		m.draft = m.plugin.Settings().Get()
		m.settingIndex = 0
		m.mode = modeSettings
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.startQuery())
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlK:
		m.mode = modeSearch
		m.menu = nil
	case tea.KeyCtrlC:
		m.quitting = true
		m.cancelQueries()
		return m, tea.Quit
	case tea.KeyUp, tea.KeyCtrlP:
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case tea.KeyDown, tea.KeyCtrlN:
		if m.menuIndex < len(m.menu)-1 {
			m.menuIndex++
		}
	case tea.KeyEnter:
		action := m.menu[m.menuIndex].Action
		m.mode = modeSearch
		m.menu = nil
		return m, runAction(action)
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlO:
		draft := m.draft
		m.plugin.Settings().Update(func(s *settings.Settings) {
			s.UseLocationAsWorkingDir = draft.UseLocationAsWorkingDir
			s.MaxSearchCount = draft.MaxSearchCount
		})
		m.mode = modeSearch
		if err := m.plugin.Save(); err != nil {
			m.err = err
			return m, nil
		}
		m.status = m.translator.T("settings_saved")
	case tea.KeyCtrlC:
		m.quitting = true
		m.cancelQueries()
		return m, tea.Quit
	case tea.KeyUp:
		m.settingIndex = (m.settingIndex + settingsCount - 1) % settingsCount
	case tea.KeyDown, tea.KeyTab:
		m.settingIndex = (m.settingIndex + 1) % settingsCount
	case tea.KeyEnter, tea.KeySpace:
		if m.settingIndex == settingUseLocation {
			m.draft.UseLocationAsWorkingDir = !m.draft.UseLocationAsWorkingDir
		}
	case tea.KeyLeft:
		if m.settingIndex == settingMaxSearchCount {
			m.draft.MaxSearchCount = max(0, m.draft.MaxSearchCount-maxSearchCountStep)
		}
	case tea.KeyRight:
		if m.settingIndex == settingMaxSearchCount {
			m.draft.MaxSearchCount = min(maxSearchCountMax, m.draft.MaxSearchCount+maxSearchCountStep)
		}
	}
	return m, nil
}

// startQuery hands the current text to the plugin. The plugin settles and drops superseded
// queries itself, so an earlier query keeps running; requestID only discards answers that
// arrive after a newer query started.
func (m *Model) startQuery() tea.Cmd {
	m.requestID++
	m.loading = true
	m.err = nil

	requestID := m.requestID
	text := m.input.Value()
	ctx := m.ctx

	p := m.plugin
	return func() tea.Msg {
		return queryDoneMsg{requestID: requestID, records: p.Query(ctx, text)}
	}
}

func (m *Model) cancelQueries() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) selected() (query.Record, bool) {
	if m.selection < 0 || m.selection >= len(m.records) {
		return query.Record{}, false
	}
	return m.records[m.selection], true
}

func runAction(action query.Action) tea.Cmd {
	if action == nil {
		return nil
	}
	return func() tea.Msg {
		hide, err := action()
		return actionDoneMsg{hide: hide, err: err}
	}
}

// listHeight is the terminal height minus title, input and status rows.
func (m Model) listHeight() int {
	const chrome = 3
	h := m.height - chrome
	if h < 1 {
		h = 20
	}
	return h
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	switch m.mode {
	case modeMenu:
		b.WriteString(titleStyle.Render(m.menuTitle))
		b.WriteRune('\n')
		b.WriteString(m.viewMenu())
	case modeSettings:
		b.WriteString(titleStyle.Render(m.translator.T("settings_title")))
		b.WriteRune('\n')
		b.WriteString(m.viewSettings())
	default:
		b.WriteString(titleStyle.Render(m.plugin.Title()))
		b.WriteRune('\n')
		b.WriteString(m.input.View())
		b.WriteRune('\n')
		b.WriteString(m.viewRecords())
	}
	b.WriteRune('\n')
	b.WriteString(m.viewStatus())
	return b.String()
}

func (m Model) viewRecords() string {
	if m.loading && len(m.records) == 0 {
		return dimStyle.Render("…")
	}

	lines := make([]string, 0, len(m.records))
	for i, record := range m.records {
		if i >= m.listHeight() {
			break
		}
		style := normalStyle
		switch record.Failure {
		case query.FailureBackendUnavailable, query.FailureBackendTimeout:
			style = warningStyle
		case query.FailureBackendError:
			style = errorStyle
		}

		marker := "  "
		if i == m.selection {
			marker = "> "
			style = style.Inherit(selectedStyle)
		}
		line := style.Render(marker + record.Title)
		if record.SubTitle != "" {
			line += " " + dimStyle.Render(record.SubTitle)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewMenu() string {
	lines := make([]string, 0, len(m.menu))
	for i, item := range m.menu {
		if i == m.menuIndex {
			lines = append(lines, selectedStyle.Render("> "+item.Title))
		} else {
			lines = append(lines, normalStyle.Render("  "+item.Title))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewSettings() string {
	check := "[ ]"
	if m.draft.UseLocationAsWorkingDir {
		check = "[x]"
	}
	rows := []string{
		fmt.Sprintf("%s %s", check, m.translator.T("use_location_as_working_dir")),
		fmt.Sprintf("%s: ‹ %d ›", m.translator.T("max_search_count"), m.draft.MaxSearchCount),
	}
	for i := range rows {
		if i == m.settingIndex {
			rows[i] = selectedStyle.Render("> " + rows[i])
		} else {
			rows[i] = normalStyle.Render("  " + rows[i])
		}
	}
	return strings.Join(rows, "\n")
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error())
	}
	return dimStyle.Render(m.status)
}
