// Package tui はPanelの端末UI
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pyama86/snowpanel/domain/entity"
	"github.com/pyama86/snowpanel/domain/repository"
	"github.com/pyama86/snowpanel/handler"
	"github.com/pyama86/snowpanel/presentation/cards"
)

const (
	appTitle  = "Incident Management App"
	cardWidth = 36
)

// NoticeMsg はPanelからの通知
type NoticeMsg string

// RefreshMsg はPanelがログイン状態の変化を処理した後に届く
type RefreshMsg struct{}

// opDoneMsg は非同期の操作が終わったときに届く
type opDoneMsg struct {
	op  string
	err error
}

// Focus はキー入力を受ける場所
type Focus int

const (
	FocusImpact Focus = iota
	FocusUrgency
	FocusDescription
	FocusSearch
	FocusCards
	focusCount
)

type Model struct {
	ctx     context.Context
	panel   *handler.Panel
	session repository.SessionRepository
	keys    KeyMap

	dark  bool
	theme Theme
	page  Page
	focus Focus

	impact      string
	urgency     string
	description textinput.Model
	search      textinput.Model
	cursor      int

	// 表示待ちの通知。先頭を閉じるまで他のキー入力を受け付けない
	notices []string
	status string

	width  int
	height int
}

func New(ctx context.Context, panel *handler.Panel, session repository.SessionRepository, dark bool) Model {
	description := textinput.New()
	description.Placeholder = "Short Description"
	description.CharLimit = 160

	search := textinput.New()
	search.Placeholder = "Search Incidents"

	m := Model{
		ctx:         ctx,
		panel:       panel,
		session:     session,
		keys:        DefaultKeyMap,
		dark:        dark,
		theme:       ThemeFor(dark),
		page:        PageHome,
		focus:       FocusImpact,
		description: description,
		search:      search,
	}
	m.syncForm()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case NoticeMsg:
		m.notices = append(m.notices, string(msg))
		return m, nil
	case RefreshMsg:
		m.syncForm()
		return m, nil
	case opDoneMsg:
		m.status = ""
		if msg.err != nil && m.reportable(msg.op, msg.err) {
			m.status = fmt.Sprintf("%s: %v", msg.op, msg.err)
		}
		m.syncForm()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// reportable はステータス行に出すエラーか判定する。Panelのリクエスト失敗は通知済み
func (m Model) reportable(op string, err error) bool {
	switch op {
	case "login", "logout":
		return true
	}
	return !errors.Is(err, repository.ErrRequestFailed)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if len(m.notices) > 0 {
		if key.Matches(msg, m.keys.Dismiss) {
			m.notices = m.notices[1:]
		}
		return m, nil
	}

	if m.page != PageHome || !m.session.IsAuthenticated() {
		return m.handleGlobalKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextFocus):
		cmd := m.setFocus((m.focus + 1) % focusCount)
		return m, cmd
	case key.Matches(msg, m.keys.PrevFocus):
		cmd := m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, cmd
	case key.Matches(msg, m.keys.CancelEdit):
		m.panel.CancelEdit()
		m.syncForm()
		return m, nil
	}

	switch m.focus {
	case FocusImpact, FocusUrgency:
		switch {
		case key.Matches(msg, m.keys.OptionNext):
			m.cycleOption(1)
			return m, nil
		case key.Matches(msg, m.keys.OptionPrev):
			m.cycleOption(-1)
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			return m, m.submit()
		}
		return m.handleGlobalKey(msg)
	case FocusDescription:
		if key.Matches(msg, m.keys.Submit) {
			return m, m.submit()
		}
		var cmd tea.Cmd
		m.description, cmd = m.description.Update(msg)
		m.pushDraft()
		return m, cmd
	case FocusSearch:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.panel.SetSearch(m.search.Value())
		m.clampCursor()
		return m, cmd
	case FocusCards:
		return m.handleCardKey(msg)
	}
	return m, nil
}

func (m Model) handleCardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.panel.Visible()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if m.cursor < len(visible) {
			if err := m.panel.BeginEdit(visible[m.cursor].ID); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.syncForm()
			cmd := m.setFocus(FocusDescription)
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(visible) {
			id := visible[m.cursor].ID
			return m, m.run("delete", func(ctx context.Context) error {
				return m.panel.Delete(ctx, id)
			})
		}
		return m, nil
	}
	return m.handleGlobalKey(msg)
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleTheme):
		m.dark = !m.dark
		m.theme = ThemeFor(m.dark)
	case key.Matches(msg, m.keys.PageHome):
		m.page = PageHome
	case key.Matches(msg, m.keys.PageAbout):
		m.page = PageAbout
	case key.Matches(msg, m.keys.PageNotFound):
		m.page = Route(notFoundPath)
	case key.Matches(msg, m.keys.Login):
		if !m.session.IsAuthenticated() {
			return m, m.run("login", m.session.Login)
		}
	case key.Matches(msg, m.keys.Logout):
		if m.session.IsAuthenticated() {
			return m, m.run("logout", m.session.Logout)
		}
	}
	return m, nil
}

// run はfnをUpdateの外で実行する。通知はprogram経由で届くためUpdate内で直接呼んではいけない
func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) submit() tea.Cmd {
	m.pushDraft()
	return m.run("submit", m.panel.Submit)
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	m.description.Blur()
	m.search.Blur()
	switch f {
	case FocusDescription:
		return m.description.Focus()
	case FocusSearch:
		return m.search.Focus()
	}
	return nil
}

func (m *Model) cycleOption(step int) {
	options := append([]string{""}, entity.LevelOptions...)
	current := &m.impact
	if m.focus == FocusUrgency {
		current = &m.urgency
	}
	idx := 0
	for i, o := range options {
		if o == *current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(options)) % len(options)
	*current = options[idx]
	m.pushDraft()
}

func (m *Model) pushDraft() {
	m.panel.SetDraft(entity.Draft{
		Impact:           m.impact,
		Urgency:          m.urgency,
		ShortDescription: m.description.Value(),
	})
}

// syncForm は入力欄と検索欄をPanelの内容に合わせる
func (m *Model) syncForm() {
	d := m.panel.Draft()
	m.impact = d.Impact
	m.urgency = d.Urgency
	if m.description.Value() != d.ShortDescription {
		m.description.SetValue(d.ShortDescription)
	}
	if q := m.panel.Search(); m.search.Value() != q {
		m.search.SetValue(q)
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.panel.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	var body string
	switch {
	case len(m.notices) > 0:
		body = m.viewNotice()
	case m.page == PageAbout:
		body = m.viewAbout()
	case m.page == PageNotFound:
		body = m.viewNotFound()
	case !m.session.IsAuthenticated():
		body = lipgloss.NewStyle().Foreground(m.theme.Text).Render("Please log in")
	default:
		body = m.viewDashboard()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		"",
		lipgloss.NewStyle().PaddingLeft(2).Render(body),
		"",
		m.viewStatus(),
	)
}

func (m Model) viewHeader() string {
	bar := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.Paper).
		Background(m.theme.Primary).
		Padding(0, 1)

	icon := "☾"
	if m.dark {
		icon = "☀"
	}
	var nav []string
	if m.session.IsAuthenticated() {
		nav = []string{"[1] Home", "[2] About", "[3] 404 Test", "[O] Logout"}
	} else {
		nav = []string{"[L] Login with ServiceNow"}
	}
	return bar.Render(fmt.Sprintf("%s   %s  [t] %s", appTitle, strings.Join(nav, "  "), icon))
}

func (m Model) viewDashboard() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Text).Render("Incident Dashboard")
	search := m.field(FocusSearch, "Search Incidents", m.search.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		"",
		m.viewForm(),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Border).Render(strings.Repeat("─", 60)),
		search,
		"",
		m.viewCards(),
	)
}

func (m Model) viewForm() string {
	title, button := "Create New Incident", "[ Create ]"
	if m.panel.EditingID() != "" {
		title, button = "Edit Incident", "[ Update ]"
	}

	rows := []string{
		lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary).Render(title),
		m.field(FocusImpact, "Impact", picker(m.impact)),
		m.field(FocusUrgency, "Urgency", picker(m.urgency)),
		m.field(FocusDescription, "Short Description", m.description.View()),
		lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary).Render(button),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1).
		Render(strings.Join(rows, "\n"))
}

func picker(v string) string {
	if v == "" {
		v = "       "
	}
	return fmt.Sprintf("◀ %s ▶", v)
}

func (m Model) field(f Focus, label, value string) string {
	marker := "  "
	style := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	if m.focus == f {
		marker = "› "
		style = lipgloss.NewStyle().Foreground(m.theme.Primary)
	}
	return marker + style.Render(label+":") + " " + value
}

func (m Model) viewCards() string {
	visible := m.panel.Visible()
	if len(visible) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("No incidents.")
	}

	perRow := 1
	if m.width > cardWidth+4 {
		perRow = (m.width - 4) / (cardWidth + 2)
	}

	var rows []string
	var row []string
	for i, inc := range visible {
		row = append(row, m.card(inc, m.focus == FocusCards && i == m.cursor))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) card(inc entity.Incident, selected bool) string {
	border := m.theme.Border
	if selected {
		border = m.theme.Primary
	}
	lines := cards.Lines(inc)
	lines[0] = lipgloss.NewStyle().Bold(true).Render(lines[0])
	actions := lipgloss.NewStyle().Foreground(m.theme.Success).Render("[e] Edit") + "  " +
		lipgloss.NewStyle().Foreground(m.theme.Error).Render("[d] Delete")
	lines = append(lines, "", actions)

	return lipgloss.NewStyle().
		Width(cardWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(m.theme.Text).
		Padding(0, 1).
		MarginRight(2).
		Render(strings.Join(lines, "\n"))
}

func (m Model) viewNotice() string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(m.theme.Primary).
		Foreground(m.theme.Text).
		Padding(1, 3).
		Render(m.notices[0] + "\n\n[enter] OK")
}

func (m Model) viewAbout() string {
	return lipgloss.NewStyle().Foreground(m.theme.Text).Render(
		"About\n\n" +
			"Lists, creates, updates, deletes and searches ServiceNow incidents\n" +
			"through the incident API, using the session from Login with ServiceNow.",
	)
}

func (m Model) viewNotFound() string {
	return lipgloss.NewStyle().Foreground(m.theme.Error).Render("404 - Page not found")
}

func (m Model) viewStatus() string {
	parts := []string{m.panel.State().String()}
	if m.status != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.status))
	}
	parts = append(parts, "tab: move  enter: submit  e/d: edit/delete  esc: cancel  q: quit")
	return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(strings.Join(parts, " | "))
}
