package playerbar

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/waved/internal/frontend/frontendtest"
	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/playlist"
	"github.com/llehouerou/waved/internal/trackinfo"
	"github.com/llehouerou/waved/internal/ui/styles"
)

func playingState() State {
	return State{
		Status:   player.Playing,
		Position: 3,
		Entries:  12,
		Title:    "Song",
		Artist:   "Band",
		Album:    "Record",
		Year:     1999,
		Elapsed:  83 * time.Second,
		Duration: 238 * time.Second,
		Volume:   80,
		Mode:     playlist.RepeatAll,
	}
}

func lines(s string) []string { return strings.Split(s, "\n") }

func TestRenderCompact(t *testing.T) {
	r := NewRenderer(styles.Get("mono"))
	out := r.Render(playingState(), ModeCompact, 140)

	require.Len(t, lines(out), Height(ModeCompact))
	content := lines(out)[1]
	for _, want := range []string{"Song", "Band · Record · 1999", "3/12", playSymbol, "1:23 / 3:58", "vol  80%", "repeat-all"} {
		assert.Contains(t, content, want)
	}
	for _, l := range lines(out) {
		assert.LessOrEqual(t, lipgloss.Width(l), 140)
	}
}

func TestRenderCompact_NarrowTruncatesInfo(t *testing.T) {
	s := playingState()
	s.Album = strings.Repeat("Very Long Album Name ", 5)
	r := NewRenderer(styles.Get("mono"))

	content := lines(r.Render(s, ModeCompact, 100))[1]
	assert.Contains(t, content, "Song")
	assert.Contains(t, content, "…")
	assert.NotContains(t, content, s.Album)
}

func TestRenderPausedAndStopped(t *testing.T) {
	r := NewRenderer(styles.Get("default"))
	s := playingState()
	s.Status = player.Paused
	assert.Contains(t, r.Render(s, ModeCompact, 120), pauseSymbol)

	s = State{Status: player.Stopped, Entries: 1, Volume: 50}
	out := r.Render(s, ModeCompact, 80)
	assert.Contains(t, out, "stopped · 1 track")
	assert.Contains(t, out, "vol  50%")

	s.Entries = 0
	assert.Contains(t, r.Render(s, ModeCompact, 80), "empty playlist")
}

func TestRenderExpanded(t *testing.T) {
	s := playingState()
	s.TrackNumber = 4
	s.Genre = "Jazz"
	s.Format = "FLAC"
	s.SampleRate = 44100
	s.Bitrate = 900

	out := NewRenderer(styles.Get("mono")).Render(s, ModeExpanded, 80)
	require.Len(t, lines(out), Height(ModeExpanded))
	assert.Contains(t, out, "04 - Song")
	assert.Contains(t, out, "Record (1999)")
	assert.Contains(t, out, "Jazz · FLAC · 44.1 kHz · 900 kbit/s")
	assert.Contains(t, out, "track 3 of 12")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "", truncate("abc", 0))
	assert.Equal(t, "a b", sanitize("a b\x07"))
	assert.Equal(t, "ab   ", pad("ab", 5))
	assert.Equal(t, "1:05", formatDuration(65*time.Second))
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_KeysSendCommands(t *testing.T) {
	h := frontendtest.New()
	h.SetVolume(98)
	h.SetMode(playlist.RandomRepeat)
	var m tea.Model = NewModel(h, styles.Get("mono"))

	for _, k := range []string{"space", "s", "n", "b", "right", "left", "+", "-", "m"} {
		m, _ = m.Update(keyMsg(k))
	}

	assert.Equal(t, []playback.Command{
		{Kind: playback.CmdPlay},
		{Kind: playback.CmdStop},
		{Kind: playback.CmdNext},
		{Kind: playback.CmdPrevious},
		{Kind: playback.CmdSeek, Int: seekStep},
		{Kind: playback.CmdSeek, Int: -seekStep},
		{Kind: playback.CmdVolume, Int: 100},
		{Kind: playback.CmdVolume, Int: 93},
		{Kind: playback.CmdPlayMode, Int: int(playlist.Continue)},
	}, h.Commands())
}

func TestModel_RefreshAndToggles(t *testing.T) {
	h := frontendtest.New()
	h.AddFiles("/a.mp3")
	var m tea.Model = NewModel(h, styles.Get("mono"))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})

	h.SetPlaying(player.Playing, 1, trackinfo.Fields{Path: "/a.mp3", Title: "Alpha", Length: time.Minute})
	assert.NotContains(t, m.View(), "Alpha")
	m, _ = m.Update(refreshMsg{})
	assert.Contains(t, m.View(), "Alpha")

	m, _ = m.Update(keyMsg("space"))
	assert.Equal(t, playback.CmdPause, h.Commands()[0].Kind)

	m, _ = m.Update(keyMsg("e"))
	assert.Len(t, lines(m.View()), Height(ModeExpanded))

	m, _ = m.Update(keyMsg("?"))
	assert.Contains(t, m.View(), "play/pause")

	m.Update(keyMsg("q"))
	assert.Equal(t, 1, h.QuitRequests())
}

func TestInit_Disabled(t *testing.T) {
	h := frontendtest.New()
	assert.False(t, NewWithOptions().Init(h))
}
