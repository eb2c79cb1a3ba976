package core

import (
	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/playlist"
	"github.com/llehouerou/waved/internal/trackinfo"
)

var _ frontend.Host = (*Core)(nil)

// Logger returns a logger tagged with component.
func (c *Core) Logger(component string) zerolog.Logger {
	return c.baseLog.With().Str("component", component).Logger()
}

// Command queues a playback request for the control goroutine.
func (c *Core) Command(cmd playback.Command) bool { return c.ctl.SetCommand(cmd) }

func (c *Core) Status() player.Status       { return c.ctl.Status() }
func (c *Core) ElapsedMS() int64            { return c.ctl.ElapsedMS() }
func (c *Core) TrackInfo() trackinfo.Fields { return c.info.Snapshot() }
func (c *Core) Position() int               { return c.ctl.Position() }
func (c *Core) Volume() int                 { return c.ctl.Volume() }
func (c *Core) PlayMode() playlist.PlayMode { return c.ctl.Mode() }

// Playlist returns a copy of the playlist entries.
func (c *Core) Playlist() []playlist.Entry {
	c.pl.Lock()
	defer c.pl.Unlock()
	return c.pl.Entries()
}

func (c *Core) PlaylistLen() int {
	c.pl.Lock()
	defer c.pl.Unlock()
	return c.pl.Len()
}

// AddFiles appends files to the playlist, reading their tags, and returns
// the index of the first one, or -1 when paths is empty.
func (c *Core) AddFiles(paths ...string) int {
	entries := make([]playlist.Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, readEntry(p))
	}
	return c.ctl.AddEntries(entries...)
}

func (c *Core) RemoveEntry(index int) bool { return c.ctl.RemoveEntry(index) }
func (c *Core) ClearPlaylist()             { c.ctl.ClearPlaylist() }
func (c *Core) ToggleQueue(index int) bool { return c.ctl.ToggleQueue(index) }

// QueuePosition returns the 1-based queue position of the entry, or 0.
func (c *Core) QueuePosition(index int) int {
	c.pl.Lock()
	defer c.pl.Unlock()
	return c.pl.QueuePosition(index)
}

func (c *Core) ConfigString(key string) string      { return c.cfg.String(key) }
func (c *Core) ConfigInt(key string) int            { return c.cfg.Int(key) }
func (c *Core) ConfigBool(key string) bool          { return c.cfg.Bool(key) }
func (c *Core) SetConfig(key string, val any) error { return c.cfg.Set(key, val) }
