package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	play     key.Binding
	all      key.Binding
	toggle   key.Binding
	create   key.Binding
	add      key.Binding
	remove   key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	del      key.Binding
	next     key.Binding
	prev     key.Binding
	ended    key.Binding
	stop     key.Binding
	player   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		play:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
		all:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "all videos")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		create:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new playlist")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "append selection")),
		remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		moveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		moveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		del:      key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		next:     key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n", "next")),
		prev:     key.NewBinding(key.WithKeys("p", "b", "left", "h"), key.WithHelp("p", "previous")),
		ended:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "ended")),
		stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		player:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "player")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.toggle, k.create, k.add, k.remove, k.moveUp, k.moveDown, k.del},
		{k.play, k.next, k.prev, k.ended, k.stop, k.player},
		{k.all, k.quit},
	}
}
