// Package frontendtest provides an in-memory frontend.Host for frontend
// tests.
package frontendtest

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/playlist"
	"github.com/llehouerou/waved/internal/trackinfo"
)

// Host records commands and serves canned state. All methods are safe for
// concurrent use.
type Host struct {
	mu       sync.Mutex
	log      zerolog.Logger
	commands []playback.Command
	quits    int
	status   player.Status
	elapsed  int64
	info     trackinfo.Fields
	position int
	volume   int
	mode     playlist.PlayMode
	entries  []playlist.Entry
	queue    []int
	config   map[string]any
}

var _ frontend.Host = (*Host)(nil)

// New returns a host with an empty playlist, volume 80 and no config.
func New() *Host {
	return &Host{
		log:      zerolog.Nop(),
		position: -1,
		volume:   80,
		config:   make(map[string]any),
	}
}

// WithLogger makes Logger return log.
func (h *Host) WithLogger(log zerolog.Logger) *Host {
	h.log = log
	return h
}

func (h *Host) Logger(component string) zerolog.Logger {
	return h.log.With().Str("component", component).Logger()
}

func (h *Host) Command(cmd playback.Command) bool {
	if cmd.Kind == playback.NoCmd {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = append(h.commands, cmd)
	return true
}

func (h *Host) RequestQuit() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.quits++
}

// Commands returns the commands received so far.
func (h *Host) Commands() []playback.Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.commands)
}

// QuitRequests returns how many times RequestQuit was called.
func (h *Host) QuitRequests() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.quits
}

func (h *Host) Status() player.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *Host) ElapsedMS() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.elapsed
}

func (h *Host) TrackInfo() trackinfo.Fields {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.info
}

func (h *Host) Position() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

func (h *Host) Volume() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *Host) PlayMode() playlist.PlayMode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mode
}

func (h *Host) Playlist() []playlist.Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.entries)
}

func (h *Host) PlaylistLen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *Host) AddFiles(paths ...string) int {
	if len(paths) == 0 {
		return -1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	first := len(h.entries)
	for _, p := range paths {
		h.entries = append(h.entries, playlist.Entry{Path: p})
	}
	return first
}

func (h *Host) RemoveEntry(index int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.entries) {
		return false
	}
	h.entries = slices.Delete(h.entries, index, index+1)
	return true
}

func (h *Host) ClearPlaylist() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	h.queue = nil
}

func (h *Host) ToggleQueue(index int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i := slices.Index(h.queue, index); i >= 0 {
		h.queue = slices.Delete(h.queue, i, i+1)
		return false
	}
	h.queue = append(h.queue, index)
	return true
}

func (h *Host) QueuePosition(index int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Index(h.queue, index) + 1
}

func (h *Host) ConfigString(key string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, _ := h.config[key].(string)
	return s
}

func (h *Host) ConfigInt(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, _ := h.config[key].(int)
	return n
}

func (h *Host) ConfigBool(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, _ := h.config[key].(bool)
	return b
}

func (h *Host) SetConfig(key string, val any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.config[key] = val
	return nil
}

// SetPlaying sets the status, the playlist position and the track.
func (h *Host) SetPlaying(status player.Status, position int, info trackinfo.Fields) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
	h.position = position
	h.info = info
}

// SetElapsed sets the reported position in the track.
func (h *Host) SetElapsed(ms int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.elapsed = ms
}

// SetVolume sets the reported volume.
func (h *Host) SetVolume(percent int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = percent
}

// SetMode sets the reported play mode.
func (h *Host) SetMode(m playlist.PlayMode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mode = m
}
