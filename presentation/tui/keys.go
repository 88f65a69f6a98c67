package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap はキー割り当て。入力欄にフォーカスがある間は1文字のキーは文字入力になる
type KeyMap struct {
	NextFocus key.Binding
	PrevFocus key.Binding

	Up   key.Binding
	Down key.Binding

	// impactとurgencyの選択
	OptionNext key.Binding
	OptionPrev key.Binding

	Submit     key.Binding
	Edit       key.Binding
	Delete     key.Binding
	CancelEdit key.Binding

	Dismiss key.Binding

	PageHome     key.Binding
	PageAbout    key.Binding
	PageNotFound key.Binding

	ToggleTheme key.Binding
	Login       key.Binding
	Logout      key.Binding

	Quit      key.Binding
	ForceQuit key.Binding
}

var DefaultKeyMap = KeyMap{
	NextFocus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	PrevFocus: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	OptionNext: key.NewBinding(
		key.WithKeys("right", "l", " "),
		key.WithHelp("→", "next option"),
	),
	OptionPrev: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "previous option"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "create/update"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	CancelEdit: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel edit"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("enter", "esc"),
		key.WithHelp("enter", "ok"),
	),
	PageHome: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "home"),
	),
	PageAbout: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "about"),
	),
	PageNotFound: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "404 test"),
	),
	ToggleTheme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "theme"),
	),
	Login: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "login"),
	),
	Logout: key.NewBinding(
		key.WithKeys("O"),
		key.WithHelp("O", "logout"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}
