// Package playback turns playback requests into Player Engine calls and
// queue events.
//
// Transitions (Play, Next, PlayFile, ...) and the Poll functions must run on
// the control goroutine. SetCommand and the playlist editing methods are safe
// from any goroutine.
package playback

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/playlist"
	"github.com/llehouerou/waved/internal/trackinfo"
)

// ErrInvalidIndex is returned for a playlist index out of range.
var ErrInvalidIndex = errors.New("invalid playlist index")

// Deps are the collaborators of a Controller.
type Deps struct {
	Engine   player.Engine
	Playlist *playlist.Playlist
	Info     *trackinfo.TrackInfo
	Events   *events.Queue
	Config   *config.Store
	Log      zerolog.Logger
	// OnPlaylistEnd runs when the playlist ends while
	// core.shutdown_after_last is set.
	OnPlaylistEnd func()
}

// Controller is the playback state machine.
type Controller struct {
	engine player.Engine
	pl     *playlist.Playlist
	info   *trackinfo.TrackInfo
	events *events.Queue
	cfg    *config.Store
	log    zerolog.Logger
	onEnd  func()

	cmd slot

	mode     atomic.Int32
	volume   atomic.Int32
	position atomic.Int32 // 1-based playlist position of the playing track, or -1
	status   atomic.Int32 // last status reported to frontends

	// control goroutine only
	lastSecond int64
	detached   bool // a file outside the playlist plays
}

// New creates a controller. Play mode and volume are read from the config
// store.
func New(d Deps) *Controller {
	c := &Controller{
		engine:     d.Engine,
		pl:         d.Playlist,
		info:       d.Info,
		events:     d.Events,
		cfg:        d.Config,
		log:        d.Log.With().Str("component", "playback").Logger(),
		onEnd:      d.OnPlaylistEnd,
		lastSecond: -1,
	}
	c.position.Store(-1)
	c.status.Store(int32(player.Stopped))

	mode, err := playlist.ParseMode(c.cfg.String(config.KeyPlayMode))
	if err != nil {
		c.log.Warn().Err(err).Msg("falling back to continue mode")
	}
	c.mode.Store(int32(mode))

	vol := clampVolume(c.cfg.Int(config.KeyVolume))
	c.volume.Store(int32(vol))
	c.engine.SetVolume(vol)
	return c
}

// SetCommand stores cmd as the pending request and wakes the control loop.
// An unconsumed earlier request is replaced. It returns false for NoCmd.
func (c *Controller) SetCommand(cmd Command) bool {
	if cmd.Kind == NoCmd {
		return false
	}
	if c.cmd.set(cmd) {
		c.log.Debug().Stringer("cmd", cmd.Kind).Msg("replaced pending command")
	}
	c.events.Notify()
	return true
}

// HasPendingCommand reports whether a command waits to be drained.
func (c *Controller) HasPendingCommand() bool { return c.cmd.has() }

// DrainCommand performs the pending command, if any, and reports whether
// one ran.
func (c *Controller) DrainCommand() bool {
	cmd, ok := c.cmd.take()
	if !ok {
		return false
	}
	if err := c.Execute(cmd); err != nil {
		c.log.Warn().Err(err).Stringer("cmd", cmd.Kind).Msg("command failed")
	}
	return true
}

// Execute performs cmd on the calling goroutine.
func (c *Controller) Execute(cmd Command) error {
	switch cmd.Kind {
	case NoCmd:
		return nil
	case CmdPlay:
		c.Play()
	case CmdPause:
		c.Pause()
	case CmdStop:
		c.Stop()
	case CmdNext:
		c.Next()
	case CmdPrevious:
		c.Previous()
	case CmdPlayItem:
		return c.PlayPlaylistItem(cmd.Int)
	case CmdPlayFile:
		return c.PlayFile(cmd.Str)
	case CmdSeek:
		return c.Seek(cmd.Int)
	case CmdVolume:
		c.SetVolume(cmd.Int)
	case CmdPlayMode:
		return c.SetPlayMode(playlist.PlayMode(cmd.Int))
	default:
		return fmt.Errorf("unknown command %d", cmd.Kind)
	}
	return nil
}

// Play resumes a paused track, or starts the current playlist entry (the
// first one when there is none).
func (c *Controller) Play() {
	switch c.engine.Status() {
	case player.Paused:
		c.engine.PauseRequest()
		c.syncStatus()
		return
	case player.Playing:
		return
	case player.Stopped, player.Finished:
	}

	c.pl.Lock()
	idx := c.pl.Current()
	ok := idx >= 0
	if !ok {
		idx, ok = c.pl.Next(c.Mode())
	}
	c.pl.Unlock()
	if !ok {
		return
	}
	c.playFrom(idx, true, c.pl.Next)
}

// Pause toggles between playing and paused.
func (c *Controller) Pause() {
	if !c.engine.Status().IsActive() {
		return
	}
	c.engine.PauseRequest()
	c.syncStatus()
}

// Stop stops playback. The playlist cursor is kept.
func (c *Controller) Stop() {
	c.engine.Stop()
	c.syncStatus()
}

// Next moves to the next entry following the play mode. At the end of the
// playlist playback stops.
func (c *Controller) Next() {
	c.pl.Lock()
	idx, ok := c.pl.Next(c.Mode())
	c.pl.Unlock()
	if !ok {
		c.endOfPlaylist()
		return
	}
	c.playFrom(idx, true, c.pl.Next)
}

// Previous moves to the previous entry. It does nothing at the start of a
// non-repeating playlist.
func (c *Controller) Previous() {
	c.pl.Lock()
	idx, ok := c.pl.Prev(c.Mode())
	c.pl.Unlock()
	if !ok {
		return
	}
	c.playFrom(idx, true, c.pl.Prev)
}

// PlayPlaylistItem plays the entry at the 0-based index.
func (c *Controller) PlayPlaylistItem(index int) error {
	c.pl.Lock()
	ok := c.pl.SetCurrent(index)
	c.pl.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	c.playFrom(index, true, c.pl.Next)
	return nil
}

// PlayFile plays a file outside the playlist. The playlist loses its
// current entry but keeps its contents.
func (c *Controller) PlayFile(path string) error {
	fade := c.fadeOut()
	if err := c.engine.Play(path, true, fade); err != nil {
		c.syncStatus()
		return fmt.Errorf("play file: %w", err)
	}
	c.pl.Lock()
	c.pl.ClearCurrent()
	c.pl.Unlock()

	c.position.Store(-1)
	c.detached = true
	c.lastSecond = -1
	c.push(events.TrackChange, -1)
	c.syncStatus()
	return nil
}

// Seek moves the playing track by a relative number of seconds.
func (c *Controller) Seek(seconds int) error {
	if err := c.engine.Seek(time.Duration(seconds) * time.Second); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	c.lastSecond = -1
	return nil
}

// SetVolume sets the output volume in percent and stores it in the config.
func (c *Controller) SetVolume(percent int) {
	percent = clampVolume(percent)
	c.engine.SetVolume(percent)
	if int(c.volume.Swap(int32(percent))) == percent {
		return
	}
	if err := c.cfg.Set(config.KeyVolume, percent); err != nil {
		c.log.Warn().Err(err).Msg("store volume")
	}
	c.push(events.VolumeChange, percent)
}

// SetPlayMode changes how the playlist advances.
func (c *Controller) SetPlayMode(mode playlist.PlayMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid play mode %d", int(mode))
	}
	if playlist.PlayMode(c.mode.Swap(int32(mode))) == mode {
		return nil
	}
	c.pl.Lock()
	c.pl.ResetShuffle()
	c.pl.Unlock()

	if err := c.cfg.Set(config.KeyPlayMode, mode.String()); err != nil {
		c.log.Warn().Err(err).Msg("store play mode")
	}
	c.push(events.PlaymodeChange, int(mode))
	return nil
}

// Mode returns the current play mode.
func (c *Controller) Mode() playlist.PlayMode { return playlist.PlayMode(c.mode.Load()) }

// Volume returns the volume in percent.
func (c *Controller) Volume() int { return int(c.volume.Load()) }

// Position returns the 1-based playlist position of the playing track, or
// -1 when nothing from the playlist plays.
func (c *Controller) Position() int { return int(c.position.Load()) }

// Status returns the last status reported to frontends.
func (c *Controller) Status() player.Status { return player.Status(c.status.Load()) }

// ElapsedMS returns the position within the playing track.
func (c *Controller) ElapsedMS() int64 { return c.engine.ElapsedMS() }

// PollEngine reacts to status changes of the engine: a finished track
// advances the playlist, other changes are reported. It also reports
// metadata written by the engine.
func (c *Controller) PollEngine() {
	if c.engine.Status() == player.Finished {
		c.trackFinished()
	} else {
		c.syncStatus()
	}

	c.info.Lock()
	updated := c.info.IsUpdated()
	c.info.Unlock()
	if updated {
		c.push(events.TrackInfoChange, 0)
	}
}

// PollTime reports the playback position once per elapsed second while a
// track is loaded.
func (c *Controller) PollTime() {
	if !c.engine.Status().IsActive() {
		return
	}
	ms := c.engine.ElapsedMS()
	sec := ms / 1000
	if sec == c.lastSecond {
		return
	}
	c.lastSecond = sec
	c.push(events.PlaybackTimeChange, int(ms))
}

func (c *Controller) trackFinished() {
	if c.detached {
		c.detached = false
		c.engine.Stop()
		c.syncStatus()
		return
	}
	c.pl.Lock()
	idx, ok := c.pl.AutoNext(c.Mode())
	c.pl.Unlock()
	if !ok {
		c.endOfPlaylist()
		return
	}
	c.playFrom(idx, false, c.pl.Next)
}

// playFrom plays the entry at idx. Entries the engine cannot open are
// skipped with advance, trying at most one full pass over the playlist.
func (c *Controller) playFrom(idx int, skipCurrent bool, advance func(playlist.PlayMode) (int, bool)) {
	fade := skipCurrent && c.fadeOut()

	c.pl.Lock()
	attempts := c.pl.Len()
	c.pl.Unlock()

	for range attempts {
		c.pl.Lock()
		entry, ok := c.pl.Entry(idx)
		c.pl.Unlock()
		if !ok {
			break
		}

		err := c.engine.Play(entry.Path, skipCurrent, fade)
		if err == nil {
			c.position.Store(int32(idx + 1))
			c.detached = false
			c.lastSecond = -1
			c.push(events.TrackChange, idx+1)
			c.syncStatus()
			return
		}
		c.log.Warn().Err(err).Str("path", entry.Path).Msg("skipping unplayable entry")

		c.pl.Lock()
		idx, ok = advance(c.Mode())
		c.pl.Unlock()
		if !ok {
			break
		}
	}
	c.endOfPlaylist()
}

func (c *Controller) endOfPlaylist() {
	c.engine.Stop()
	c.syncStatus()
	if c.onEnd != nil && c.cfg.Bool(config.KeyShutdownAfterLast) {
		c.log.Info().Msg("playlist ended, shutting down")
		c.onEnd()
	}
}

// syncStatus reports an engine status change. Finished is internal and is
// never reported.
func (c *Controller) syncStatus() {
	s := c.engine.Status()
	if s == player.Finished {
		return
	}
	if player.Status(c.status.Swap(int32(s))) != s {
		c.push(events.PlaybackStateChange, int(s))
	}
}

func (c *Controller) fadeOut() bool {
	return c.cfg.Int(config.KeyFadeOutMS) > 0
}

func (c *Controller) push(kind events.Kind, param int) {
	if err := c.events.Push(kind, param); err != nil {
		c.log.Warn().Err(err).Stringer("kind", kind).Int("param", param).Msg("event dropped")
	}
}

func clampVolume(p int) int {
	return min(max(p, 0), 100)
}
