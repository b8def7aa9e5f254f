package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidshelf/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSyncEvent MsgKind = iota
	MsgSyncClosed
	MsgPlaylistDeleted
)

// syncEventMsg is the constructor for [MsgSyncEvent]
func syncEventMsg(ev tasks.SyncEvent) Msg {
	return Msg{kind: MsgSyncEvent, data: ev}
}

// syncClosedMsg is the constructor for [MsgSyncClosed]
func syncClosedMsg() Msg {
	return Msg{kind: MsgSyncClosed}
}

// playlistDeletedMsg is the constructor for [MsgPlaylistDeleted]
func playlistDeletedMsg(name string, err error) Msg {
	return Msg{
		kind: MsgPlaylistDeleted,
		data: struct {
			name string
			err  error
		}{name, err},
	}
}
