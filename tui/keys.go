package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"seatmap-cli/seatmap"
)

type keyMap struct {
	Mode    key.Binding
	Select  key.Binding
	Delete  key.Binding
	Book    key.Binding
	Unbook  key.Binding
	Prefix  key.Binding
	Labels  key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Reset   key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Open    key.Binding
	Recent  key.Binding
	Help    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Mode: key.NewBinding(
			key.WithKeys("tab", "e"),
			key.WithHelp("tab", "view mode"),
		),
		Select: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "select seats"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete selected"),
		),
		Book: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "book selected"),
		),
		Unbook: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unbook selected"),
		),
		Prefix: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prefix"),
		),
		Labels: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "labels"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "zoom"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
		),
		Reset: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset view"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("←↑↓→", "pan"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Open: key.NewBinding(
			key.WithKeys("o", "ctrl+o"),
			key.WithHelp("o", "open floor plan"),
		),
		Recent: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "recent"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mode, k.Select, k.Delete, k.Book, k.Unbook, k.Prefix, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Mode, k.Select, k.Delete, k.Book, k.Unbook},
		{k.Prefix, k.Labels, k.Open, k.Recent},
		{k.ZoomIn, k.Up, k.Reset},
		{k.Help, k.Back, k.Quit},
	}
}

// sync relabels and enables the mode-dependent bindings so the help line
// only lists what the current state allows.
func (k *keyMap) sync(s seatmap.State) {
	k.Mode.SetHelp("tab", fmt.Sprintf("%s mode", s.Mode.Toggle()))

	switch {
	case s.SelectionMode:
		k.Select.SetHelp("s", "cancel selection")
	case s.Mode == seatmap.ModeEdit:
		k.Select.SetHelp("s", "select seats")
	default:
		k.Select.SetHelp("s", "select to book")
	}

	n := len(s.Selected)
	k.Delete.SetEnabled(s.SelectionMode && s.Mode == seatmap.ModeEdit)
	k.Delete.SetHelp("d", fmt.Sprintf("delete selected (%d)", n))

	inView := s.SelectionMode && s.Mode == seatmap.ModeView
	k.Book.SetEnabled(inView && (n == 0 || seatmap.Offers(s, seatmap.ActionBook)))
	k.Book.SetHelp("b", fmt.Sprintf("book selected (%d)", n))
	k.Unbook.SetEnabled(inView && seatmap.Offers(s, seatmap.ActionUnbook))
	k.Unbook.SetHelp("u", fmt.Sprintf("unbook selected (%d)", n))
}
