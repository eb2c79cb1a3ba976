// Package playerbar is the terminal frontend: a now-playing bar drawn with
// bubbletea below the shell prompt.
package playerbar

import (
	"time"

	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/playlist"
)

// DisplayMode controls the player bar appearance.
type DisplayMode int

const (
	ModeCompact  DisplayMode = iota // Single-line view
	ModeExpanded                    // Detailed view with metadata
)

// State holds everything needed to render the player bar.
type State struct {
	Status      player.Status
	Position    int // 1-based playlist position, -1 outside the playlist
	Entries     int
	Path        string
	Title       string
	Artist      string
	Album       string
	Genre       string
	Year        int
	TrackNumber int
	Format      string
	SampleRate  int
	Bitrate     int // kbit/s
	Elapsed     time.Duration
	Duration    time.Duration
	Volume      int
	Mode        playlist.PlayMode
}

// FromHost reads the current player state.
func FromHost(h frontend.Host) State {
	info := h.TrackInfo()
	return State{
		Status:      h.Status(),
		Position:    h.Position(),
		Entries:     h.PlaylistLen(),
		Path:        info.Path,
		Title:       info.DisplayTitle(),
		Artist:      info.Artist,
		Album:       info.Album,
		Genre:       info.Genre,
		Year:        info.Year,
		TrackNumber: info.TrackNumber,
		Format:      info.FileType,
		SampleRate:  info.SampleRate,
		Bitrate:     info.Bitrate,
		Elapsed:     time.Duration(h.ElapsedMS()) * time.Millisecond,
		Duration:    info.Length,
		Volume:      h.Volume(),
		Mode:        h.PlayMode(),
	}
}

// Height returns the number of lines Render produces for the given mode.
func Height(mode DisplayMode) int {
	if mode == ModeExpanded {
		return expandedRows + 2
	}
	return 3 // top border + content + bottom border
}
