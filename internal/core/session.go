package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/playlist"
	"github.com/llehouerou/waved/internal/state"
	"github.com/llehouerou/waved/internal/trackinfo"
)

// Restore fills the playlist before the loop starts: from the M3U file given
// in Options.PlaylistPath, otherwise from the saved session. Options.Files
// are appended and the first of them is played. Without files, the saved
// entry starts playing when core.auto_play is set.
func (c *Core) Restore(ctx context.Context) error {
	current := -1

	switch {
	case c.opts.PlaylistPath != "":
		entries, err := playlist.LoadFile(config.ExpandPath(c.opts.PlaylistPath))
		if err != nil {
			return fmt.Errorf("load playlist: %w", err)
		}
		c.ctl.AddEntries(entries...)
		c.log.Info().Str("path", c.opts.PlaylistPath).Int("entries", len(entries)).Msg("playlist loaded")

	case c.state != nil && c.cfg.Bool(config.KeyRememberPlaylist):
		s, err := c.state.Load(ctx)
		if err != nil {
			c.log.Warn().Err(err).Msg("cannot restore session")
			break
		}
		if s == nil {
			break
		}
		current = c.applySession(s)
	}

	if len(c.opts.Files) > 0 {
		first := c.AddFiles(c.opts.Files...)
		if first >= 0 {
			c.resumeAt = 0
			c.ctl.SetCommand(playback.Command{Kind: playback.CmdPlayItem, Int: first})
		}
		return nil
	}

	if current >= 0 && c.cfg.Bool(config.KeyAutoPlay) {
		c.ctl.SetCommand(playback.Command{Kind: playback.CmdPlayItem, Int: current})
	}
	return nil
}

// applySession loads a saved session into the playlist and returns the
// saved current index.
func (c *Core) applySession(s *state.Session) int {
	c.ctl.AddEntries(s.Entries...)

	if mode, err := playlist.ParseMode(s.PlayMode); err == nil {
		if err := c.ctl.SetPlayMode(mode); err != nil {
			c.log.Debug().Err(err).Msg("saved play mode")
		}
	}
	c.ctl.SetVolume(s.Volume)

	if s.CurrentIndex < 0 {
		return -1
	}
	c.pl.Lock()
	ok := c.pl.SetCurrent(s.CurrentIndex)
	c.pl.Unlock()
	if !ok {
		return -1
	}
	if c.cfg.Bool(config.KeyRememberPosition) {
		c.resumeAt = time.Duration(s.ElapsedMS) * time.Millisecond
	}
	c.log.Info().
		Int("entries", len(s.Entries)).
		Int("current", s.CurrentIndex).
		Time("saved_at", s.SavedAt).
		Msg("session restored")
	return s.CurrentIndex
}

// snapshot captures what a later run needs to resume.
func (c *Core) snapshot() state.Session {
	c.pl.Lock()
	entries := c.pl.Entries()
	current := c.pl.Current()
	c.pl.Unlock()

	s := state.Session{
		Entries:      entries,
		CurrentIndex: current,
		PlayMode:     c.ctl.Mode().String(),
		Volume:       c.ctl.Volume(),
	}
	if current >= 0 && c.ctl.Status().IsActive() {
		s.ElapsedMS = c.ctl.ElapsedMS()
	}
	return s
}

func (c *Core) saveSessionDebounced() {
	if c.state == nil || !c.cfg.Bool(config.KeyRememberPlaylist) {
		return
	}
	c.state.SaveDebounced(c.snapshot())
}

// readEntry builds a playlist entry from the file's tags. Files without
// readable tags still get an entry.
func readEntry(path string) playlist.Entry {
	if abs, err := filepath.Abs(path); err == nil && !isURL(path) {
		path = abs
	}
	f, err := trackinfo.ReadFile(path)
	if err != nil {
		return playlist.Entry{Path: path}
	}
	return playlist.Entry{
		Path:     path,
		Title:    f.Title,
		Artist:   f.Artist,
		Album:    f.Album,
		Duration: f.Length,
	}
}

func isURL(path string) bool {
	scheme, _, ok := strings.Cut(path, "://")
	return ok && scheme != "" && !strings.ContainsRune(scheme, '/')
}
