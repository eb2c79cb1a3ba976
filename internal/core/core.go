// Package core owns the shared objects of a running player and drives them
// from a single control goroutine.
package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/playlist"
	"github.com/llehouerou/waved/internal/state"
	"github.com/llehouerou/waved/internal/trackinfo"
)

// NoState disables session persistence when used as Options.StatePath.
const NoState = "-"

const defaultTick = 250 * time.Millisecond

// Options configure a Core.
type Options struct {
	// ConfigPath is the config file. When empty, ConfigDir or the XDG
	// default is used.
	ConfigPath string
	ConfigDir  string
	// Theme overrides ui.theme for this run.
	Theme string
	// Frontends is an explicit list of built-in identifiers or bundle
	// paths. When empty, every built-in frontend and every bundle in
	// frontends.dir is loaded.
	Frontends []string
	// PlaylistPath is an M3U file loaded instead of the saved session.
	PlaylistPath string
	// Files are appended to the playlist and played at startup.
	Files []string
	// StatePath is the session database. Empty means the XDG default;
	// NoState disables persistence.
	StatePath string

	Log zerolog.Logger
	// Engine replaces the audio engine.
	Engine player.Engine
	// Static resolves built-in frontends. Nil means none.
	Static *frontend.StaticLoader
	// Dynamic opens frontend bundles. Nil means frontend.DynamicLoader.
	Dynamic frontend.Loader
}

// Core is the owned context of a running player: the event queue, the
// shared state, the playback controller and the frontend registry.
type Core struct {
	opts    Options
	baseLog zerolog.Logger
	log     zerolog.Logger

	cfg     *config.Store
	cfgPath string

	events    *events.Queue
	info      *trackinfo.TrackInfo
	pl        *playlist.Playlist
	engine    player.Engine
	ctl       *playback.Controller
	frontends *frontend.Registry
	static    *frontend.StaticLoader
	dynamic   frontend.Loader
	state     *state.Manager

	mu      sync.Mutex
	running bool

	// control goroutine only
	resumeAt     time.Duration
	sessionDirty bool

	closeOnce sync.Once
	closeErr  error
}

// New loads the configuration and builds the shared objects. A missing or
// unreadable config file is not an error: defaults are used.
func New(opts Options) (*Core, error) {
	c := &Core{
		opts:    opts,
		baseLog: opts.Log,
		log:     opts.Log.With().Str("component", "core").Logger(),
		static:  opts.Static,
		dynamic: opts.Dynamic,
		running: true,
	}
	if c.static == nil {
		c.static = frontend.NewStaticLoader()
	}
	if c.dynamic == nil {
		c.dynamic = frontend.DynamicLoader{}
	}

	c.cfgPath = ConfigPath(opts)
	c.cfg = config.New(opts.Log, config.Defaults())
	if err := c.cfg.Load(c.cfgPath); err != nil {
		c.log.Warn().Err(err).Msg("using default configuration")
	}
	if opts.Theme != "" {
		if err := c.cfg.Set(config.KeyUITheme, opts.Theme); err != nil {
			return nil, err
		}
	}

	c.events = events.NewQueue(c.cfg.Int(config.KeyEventCapacity))
	c.info = trackinfo.New(true)
	c.pl = playlist.New()

	c.engine = opts.Engine
	if c.engine == nil {
		fade := time.Duration(c.cfg.Int(config.KeyFadeOutMS)) * time.Millisecond
		c.engine = player.NewBeepEngine(opts.Log, c.info, fade)
	}

	c.ctl = playback.New(playback.Deps{
		Engine:        c.engine,
		Playlist:      c.pl,
		Info:          c.info,
		Events:        c.events,
		Config:        c.cfg,
		Log:           opts.Log,
		OnPlaylistEnd: c.RequestQuit,
	})
	c.frontends = frontend.NewRegistry(c, opts.Log)

	if opts.StatePath != NoState {
		c.openState(opts.StatePath)
	}
	return c, nil
}

// ConfigPath returns the config file selected by opts.
func ConfigPath(opts Options) string {
	switch {
	case opts.ConfigPath != "":
		return config.ExpandPath(opts.ConfigPath)
	case opts.ConfigDir != "":
		return config.PathIn(opts.ConfigDir)
	default:
		return config.DefaultPath()
	}
}

func (c *Core) openState(path string) {
	if path == "" {
		p, err := state.DefaultPath()
		if err != nil {
			c.log.Warn().Err(err).Msg("session persistence disabled")
			return
		}
		path = p
	}
	m, err := state.Open(path, c.baseLog)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("session persistence disabled")
		return
	}
	c.state = m
}

// Config returns the configuration store.
func (c *Core) Config() *config.Store { return c.cfg }

// Controller returns the playback controller.
func (c *Core) Controller() *playback.Controller { return c.ctl }

// Frontends returns the frontend registry.
func (c *Core) Frontends() *frontend.Registry { return c.frontends }

// Events returns the event queue.
func (c *Core) Events() *events.Queue { return c.events }

// Close unloads every frontend, saves the session and the configuration
// and releases the audio engine. It is meant to run after Run returned.
func (c *Core) Close() error {
	c.closeOnce.Do(func() {
		c.RequestQuit()
		c.frontends.UnloadAll()

		var errs []error
		if c.state != nil {
			if c.cfg.Bool(config.KeyRememberPlaylist) {
				if err := c.state.Save(context.Background(), c.snapshot()); err != nil {
					c.log.Warn().Err(err).Msg("save session")
				}
			}
			errs = append(errs, c.state.Close())
		}
		if err := c.cfg.Save(c.cfgPath); err != nil {
			c.log.Warn().Err(err).Msg("save config")
		}
		errs = append(errs, c.engine.Close())
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}
