package frontend

import (
	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/playlist"
	"github.com/llehouerou/waved/internal/trackinfo"
)

// Host is the view of the core handed to frontends. Every method is safe to
// call from any goroutine and takes care of the locks it needs; frontends
// never see the shared objects directly.
type Host interface {
	Logger(component string) zerolog.Logger

	// Command posts a playback request for the control loop.
	Command(cmd playback.Command) bool
	// RequestQuit starts a cooperative shutdown.
	RequestQuit()

	Status() player.Status
	ElapsedMS() int64
	TrackInfo() trackinfo.Fields
	// Position is the 1-based playlist position of the playing track, or -1.
	Position() int
	Volume() int
	PlayMode() playlist.PlayMode

	Playlist() []playlist.Entry
	PlaylistLen() int
	// AddFiles appends paths to the playlist and returns the insert
	// position.
	AddFiles(paths ...string) int
	RemoveEntry(index int) bool
	ClearPlaylist()
	ToggleQueue(index int) bool
	QueuePosition(index int) int

	ConfigString(key string) string
	ConfigInt(key string) int
	ConfigBool(key string) bool
	SetConfig(key string, val any) error
}
