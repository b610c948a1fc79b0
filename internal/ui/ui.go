package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/cadence/internal/engine"
	"github.com/desertthunder/cadence/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	SyncView
	ResultView
)

// RunFunc starts a sync run, reporting progress on the given channel.
// Wired to engine.Run by the CLI so the model stays testable.
type RunFunc func(ctx context.Context, job *engine.Job, progress chan<- engine.ProgressUpdate) (*engine.Summary, error)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	job     *engine.Job
	catalog models.Catalog
	run     RunFunc

	width  int
	height int

	playlistList list.Model
	trackList    list.Model
	selected     *models.Playlist

	progressChan chan engine.ProgressUpdate
	progress     engine.ProgressUpdate
	summary      *engine.Summary
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model over a loaded job targeting one catalog.
func NewModel(ctx context.Context, job *engine.Job, catalog models.Catalog, run RunFunc) *Model {
	return &Model{
		ctx:     ctx,
		view:    PlaylistListView,
		job:     job,
		catalog: catalog,
		run:     run,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init builds the playlist browser from the job document.
func (m *Model) Init() tea.Cmd {
	items := make([]list.Item, len(m.job.Playlists))
	for i, pl := range m.job.Playlists {
		items[i] = playlistItem{playlist: pl}
	}
	m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.playlistList.Title = fmt.Sprintf("Playlists → %s", m.catalog)
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressMsg:
		m.progress = engine.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected := m.playlistList.SelectedItem(); selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				m.showTracks(pl.playlist)
			}
		}
		return m, nil
	case "s":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case "enter", "s":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = PlaylistListView
		return m, nil
	case "y":
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.summary = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) showTracks(pl models.Playlist) {
	m.selected = &pl
	items := make([]list.Item, len(pl.Tracks))
	for i, track := range pl.Tracks {
		items[i] = trackItem{track: track, catalog: m.catalog}
	}
	m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = fmt.Sprintf("Tracks in '%s'", pl.Name)
	m.trackList.SetSize(m.width-4, m.height-8)
	m.view = TrackListView
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan engine.ProgressUpdate, 50)

	go func(progress chan engine.ProgressUpdate) {
		summary, err := m.run(m.ctx, m.job, progress)
		m.summary = summary
		m.err = err
		close(progress)
	}(m.progressChan)

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{summary: m.summary, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{summary: m.summary, err: m.err}
		}
		return progressMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.sync, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.sync, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	tracks := 0
	for _, pl := range m.job.Playlists {
		tracks += len(pl.Tracks)
	}

	title := styles.title.Render(fmt.Sprintf("Sync %d playlists to %s?", len(m.job.Playlists), m.catalog))
	info := fmt.Sprintf("\nTracks: %d\n", tracks)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Playlists")

	var phase string
	switch m.progress.Phase {
	case engine.ResolvePlaylist:
		phase = fmt.Sprintf("Resolving playlists (%d/%d)", m.progress.Step, m.progress.Total)
	case engine.FetchMembership:
		phase = "Fetching current playlist contents..."
	case engine.ResolveTracks:
		phase = fmt.Sprintf("Resolving tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case engine.ApplyBatches:
		phase = fmt.Sprintf("Applying batches (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.summary == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Sync Complete")
	info := fmt.Sprintf(
		"\nPlaylists: %d (%d created)\nAdded: %d\nReused: %d\nResolved by search: %d",
		m.summary.Playlists,
		m.summary.Created,
		m.summary.Added,
		m.summary.Reused,
		m.summary.Resolved(),
	)

	var trouble strings.Builder
	if m.summary.Unresolved > 0 {
		trouble.WriteString("\n\n" + styles.warn.Render(fmt.Sprintf("%d tracks could not be resolved", m.summary.Unresolved)))
	}
	for _, name := range m.summary.Failed {
		trouble.WriteString("\n" + styles.warn.Render("Failed: "+name))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, trouble.String(), helpView)
}
