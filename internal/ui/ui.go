package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidshelf/internal/library"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	VideoListView
	PlayerView
	NameInputView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	back         ViewState
	lib          *library.Library
	events       <-chan tasks.SyncEvent
	width        int
	height       int
	playlistList list.Model
	videoList    list.Model
	playlistID   string // playlist shown in VideoListView; empty for the master list
	nameInput    textinput.Model
	status       string
	statusErr    bool
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model over lib. events may be nil.
func NewModel(ctx context.Context, lib *library.Library, events <-chan tasks.SyncEvent) *Model {
	input := textinput.New()
	input.Placeholder = "Playlist name"
	input.CharLimit = 120

	m := &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		lib:          lib,
		events:       events,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		videoList:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		nameInput:    input,
		help:         help.New(),
		keys:         newKeyMap(),
	}
	m.playlistList.Title = "Playlists"
	m.refreshPlaylists()
	return m
}

// Init starts listening for synchronization events.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.videoList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case VideoListView:
			return m.handleVideoListKeys(msg)
		case PlayerView:
			return m.handlePlayerKeys(msg)
		case NameInputView:
			return m.handleNameInputKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSyncEvent:
		ev := msg.data.(tasks.SyncEvent)
		if ev.Err != nil {
			m.setError(fmt.Errorf("%s failed: %w", ev.Phase, ev.Err))
		} else {
			m.setStatus("synced: %s", ev.Phase)
		}
		return m, m.waitForEvent()

	case MsgSyncClosed:
		m.events = nil
		return m, nil

	case MsgPlaylistDeleted:
		data := msg.data.(struct {
			name string
			err  error
		})
		if data.err != nil {
			m.setError(data.err)
		} else {
			m.setStatus("deleted %q", data.name)
		}
		m.refreshPlaylists()
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistListView:
		return m.renderList(m.playlistList, m.keys.enter, m.keys.play, m.keys.all, m.keys.del, m.keys.player, m.keys.quit)
	case VideoListView:
		keys := []key.Binding{m.keys.enter, m.keys.toggle, m.keys.create}
		if m.playlistID != "" {
			keys = append(keys, m.keys.play, m.keys.add, m.keys.remove, m.keys.moveUp, m.keys.moveDown)
		} else {
			keys = append(keys, m.keys.del)
		}
		keys = append(keys, m.keys.back, m.keys.quit)
		return m.renderList(m.videoList, keys...)
	case PlayerView:
		return m.renderPlayer()
	case NameInputView:
		return m.renderNameInput()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	selected, ok := m.playlistList.SelectedItem().(playlistItem)

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.all):
		m.openVideos("")
		return m, nil
	case key.Matches(msg, m.keys.player):
		if m.lib.PlaybackState().Open {
			m.view = PlayerView
		}
		return m, nil
	case ok && key.Matches(msg, m.keys.enter):
		m.openVideos(selected.playlist.ID)
		return m, nil
	case ok && key.Matches(msg, m.keys.play):
		m.play(func() error { return m.lib.PlayPlaylist(selected.playlist.ID) })
		return m, nil
	case ok && key.Matches(msg, m.keys.del):
		m.setStatus("deleting %q...", selected.playlist.Name)
		return m, m.deletePlaylist(selected.playlist)
	}

	return m.updateLists(msg)
}

func (m *Model) handleVideoListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.videoList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	selected, ok := m.videoList.SelectedItem().(videoItem)
	inPlaylist := m.playlistID != ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.refreshPlaylists()
		return m, nil
	case key.Matches(msg, m.keys.player):
		if m.lib.PlaybackState().Open {
			m.view = PlayerView
		}
		return m, nil
	case key.Matches(msg, m.keys.create):
		if len(m.lib.Selection()) == 0 {
			m.setStatus("select videos first")
			return m, nil
		}
		m.back = m.view
		m.view = NameInputView
		m.nameInput.SetValue("")
		return m, m.nameInput.Focus()
	case inPlaylist && key.Matches(msg, m.keys.play):
		m.play(func() error { return m.lib.PlayPlaylist(m.playlistID) })
		return m, nil
	case inPlaylist && key.Matches(msg, m.keys.add):
		n, err := m.lib.AppendSelection(m.playlistID)
		if err != nil {
			m.setError(err)
		} else {
			m.setStatus("appended %d videos", n)
		}
		m.refreshVideos()
		return m, nil
	case ok && key.Matches(msg, m.keys.enter):
		m.play(func() error { return m.lib.PlayVideo(selected.video.ID) })
		return m, nil
	case ok && key.Matches(msg, m.keys.toggle):
		if _, err := m.lib.ToggleSelection(selected.video.ID); err != nil {
			m.setError(err)
		}
		m.refreshVideos()
		return m, nil
	case ok && inPlaylist && key.Matches(msg, m.keys.remove):
		if _, err := m.lib.RemoveVideo(m.playlistID, selected.video.ID); err != nil {
			m.setError(err)
		}
		m.refreshVideos()
		return m, nil
	case ok && inPlaylist && key.Matches(msg, m.keys.moveUp):
		m.move(-1)
		return m, nil
	case ok && inPlaylist && key.Matches(msg, m.keys.moveDown):
		m.move(1)
		return m, nil
	case ok && !inPlaylist && key.Matches(msg, m.keys.del):
		if err := m.lib.DeleteVideoGlobally(selected.video.ID); err != nil {
			m.setError(err)
		} else {
			m.setStatus("deleted %q everywhere", selected.video.Title)
		}
		m.refreshVideos()
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.player):
		m.view = PlaylistListView
		m.refreshPlaylists()
		return m, nil
	case key.Matches(msg, m.keys.next):
		var moved bool
		if moved, err = m.lib.Next(); err == nil && !moved {
			m.setStatus("end of queue")
		}
	case key.Matches(msg, m.keys.prev):
		var moved bool
		if moved, err = m.lib.Previous(); err == nil && !moved {
			m.setStatus("start of queue")
		}
	case key.Matches(msg, m.keys.ended):
		err = m.lib.OnEnded()
	case key.Matches(msg, m.keys.stop):
		err = m.lib.ClosePlayer()
	}

	if err != nil {
		m.setError(err)
	}
	if !m.lib.PlaybackState().Open {
		m.view = PlaylistListView
		m.refreshPlaylists()
	}
	return m, nil
}

func (m *Model) handleNameInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.nameInput.Blur()
		m.view = m.back
		return m, nil
	case tea.KeyEnter:
		p, err := m.lib.CreatePlaylistFromSelection(m.nameInput.Value(), "")
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.nameInput.Blur()
		m.setStatus("created %q with %d videos", p.Name, len(p.VideoIDs))
		m.openVideos(p.ID)
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case VideoListView:
		m.videoList, cmd = m.videoList.Update(msg)
	}
	return m, cmd
}

// move shifts the highlighted video by delta within the open playlist.
func (m *Model) move(delta int) {
	p, err := m.lib.Playlist(m.playlistID)
	if err != nil {
		m.setError(err)
		return
	}

	from := m.videoList.Index()
	to := from + delta
	if from < 0 || to < 0 || to >= len(p.VideoIDs) {
		return
	}

	order := slices.Clone(p.VideoIDs)
	order[from], order[to] = order[to], order[from]
	if _, err := m.lib.Reorder(p.ID, order); err != nil {
		m.setError(err)
		return
	}
	m.refreshVideos()
	m.videoList.Select(to)
}

func (m *Model) play(start func() error) {
	if err := start(); err != nil {
		m.setError(err)
		return
	}
	m.status = ""
	m.view = PlayerView
}

func (m *Model) openVideos(playlistID string) {
	m.playlistID = playlistID
	m.view = VideoListView
	m.videoList.ResetFilter()
	m.videoList.Select(0)
	m.refreshVideos()
}

func (m *Model) refreshPlaylists() {
	state := m.lib.PlaybackState()
	playlists := m.lib.Playlists()

	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p, playing: state.Open && state.PlaylistID == p.ID}
	}
	m.playlistList.SetItems(items)
}

func (m *Model) refreshVideos() {
	var videos []models.Video
	if m.playlistID == "" {
		videos = m.lib.Videos()
		m.videoList.Title = "All videos"
	} else {
		p, vs, err := m.lib.PlaylistVideos(m.playlistID)
		if err != nil {
			m.setError(err)
			m.view = PlaylistListView
			m.refreshPlaylists()
			return
		}
		videos = vs
		m.videoList.Title = fmt.Sprintf("Videos in '%s'", p.Name)
	}

	selection := m.lib.Selection()
	current, playing := m.lib.NowPlaying()

	items := make([]list.Item, len(videos))
	for i, v := range videos {
		items[i] = videoItem{
			video:    v,
			selected: slices.Contains(selection, v.ID),
			current:  playing && current.ID == v.ID,
		}
	}
	m.videoList.SetItems(items)
}

func (m *Model) deletePlaylist(p models.Playlist) tea.Cmd {
	return func() tea.Msg {
		return playlistDeletedMsg(p.Name, m.lib.DeletePlaylist(m.ctx, p.ID))
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return syncClosedMsg()
		}
		return syncEventMsg(ev)
	}
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return styles.err.Render("Error: "+m.status) + "\n"
	}
	return styles.ok.Render(m.status) + "\n"
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	helpView := m.help.ShortHelpView(keys)
	if n := len(m.lib.Selection()); n > 0 {
		helpView = styles.help.Render(fmt.Sprintf("%d selected", n)) + "  " + helpView
	}
	return fmt.Sprintf("%s\n\n%s%s", l.View(), m.renderStatus(), helpView)
}

func (m *Model) renderPlayer() string {
	state := m.lib.PlaybackState()
	if !state.Open {
		return styles.warn.Render("Nothing playing") + "\n"
	}

	name := state.Name
	if name == "" {
		name = "Single video"
	}
	title := styles.title.Render(fmt.Sprintf("Now playing: %s (%d/%d)", name, state.Index+1, len(state.Queue)))

	var b strings.Builder
	for i, v := range state.Queue {
		line := fmt.Sprintf("%2d. %s", i+1, v.Title)
		if v.ChannelTitle != "" {
			line += " • " + v.ChannelTitle
		}
		if i == state.Index {
			b.WriteString(styles.playing.Render("▶ "+line) + "\n")
		} else {
			b.WriteString("   " + line + "\n")
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.prev, m.keys.ended, m.keys.stop, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s%s", title, b.String(), m.renderStatus(), helpView)
}

func (m *Model) renderNameInput() string {
	title := styles.title.Render(fmt.Sprintf("New playlist from %d selected videos", len(m.lib.Selection())))
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "create")),
		m.keys.back,
	})
	return fmt.Sprintf("%s\n%s\n\n%s%s", title, m.nameInput.View(), m.renderStatus(), helpView)
}
