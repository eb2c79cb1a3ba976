package playerbar

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/playlist"
	"github.com/llehouerou/waved/internal/ui/styles"
)

const defaultWidth = 80

// refreshMsg asks the model to re-read the player state.
type refreshMsg struct{}

// Model is the bubbletea model of the player bar. Key presses become
// commands for the core; the state is re-read on every refresh.
type Model struct {
	host     frontend.Host
	renderer Renderer
	keys     keyMap
	help     help.Model

	state    State
	mode     DisplayMode
	width    int
	showHelp bool
}

// NewModel returns a model reading from h.
func NewModel(h frontend.Host, th *styles.Theme) Model {
	hm := help.New()
	hm.Styles.ShortKey = th.S().Muted
	hm.Styles.ShortDesc = th.S().Subtle
	hm.Styles.FullKey = th.S().Muted
	hm.Styles.FullDesc = th.S().Subtle
	return Model{
		host:     h,
		renderer: NewRenderer(th),
		keys:     defaultKeys(),
		help:     hm,
		state:    FromHost(h),
		width:    defaultWidth,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case refreshMsg:
		m.state = FromHost(m.host)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Pause):
		if m.state.Status.IsActive() {
			m.host.Command(playback.Command{Kind: playback.CmdPause})
		} else {
			m.host.Command(playback.Command{Kind: playback.CmdPlay})
		}
	case key.Matches(msg, m.keys.Stop):
		m.host.Command(playback.Command{Kind: playback.CmdStop})
	case key.Matches(msg, m.keys.Next):
		m.host.Command(playback.Command{Kind: playback.CmdNext})
	case key.Matches(msg, m.keys.Prev):
		m.host.Command(playback.Command{Kind: playback.CmdPrevious})
	case key.Matches(msg, m.keys.SeekFwd):
		m.host.Command(playback.Command{Kind: playback.CmdSeek, Int: seekStep})
	case key.Matches(msg, m.keys.SeekBack):
		m.host.Command(playback.Command{Kind: playback.CmdSeek, Int: -seekStep})
	case key.Matches(msg, m.keys.VolumeUp):
		m.setVolume(m.host.Volume() + volumeStep)
	case key.Matches(msg, m.keys.VolumeDown):
		m.setVolume(m.host.Volume() - volumeStep)
	case key.Matches(msg, m.keys.Mode):
		next := playlist.CycleMode(m.host.PlayMode())
		m.host.Command(playback.Command{Kind: playback.CmdPlayMode, Int: int(next)})
	case key.Matches(msg, m.keys.Expand):
		if m.mode == ModeCompact {
			m.mode = ModeExpanded
		} else {
			m.mode = ModeCompact
		}
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Quit):
		// The program ends when the frontend is shut down.
		m.host.RequestQuit()
	}
	return m, nil
}

func (m Model) setVolume(v int) {
	m.host.Command(playback.Command{Kind: playback.CmdVolume, Int: min(max(v, 0), 100)})
}

func (m Model) View() string {
	view := m.renderer.Render(m.state, m.mode, m.width)
	if m.showHelp {
		view += "\n" + m.help.View(m.keys)
	}
	return view
}
