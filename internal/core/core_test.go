package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/lockorder"
	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/playlist"
)

type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, s)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

type fakeFrontend struct {
	id       string
	rec      *recorder
	failInit bool
	host     frontend.Host
	onEvent  func(h frontend.Host, kind events.Kind, param int)
}

func (p *fakeFrontend) ID() string   { return p.id }
func (p *fakeFrontend) Name() string { return "fake " + p.id }

func (p *fakeFrontend) Init(h frontend.Host) bool {
	p.host = h
	p.rec.add(p.id + ":init")
	return !p.failInit
}

func (p *fakeFrontend) Shutdown() { p.rec.add(p.id + ":shutdown") }

func (p *fakeFrontend) OnEvent(kind events.Kind, param int) int {
	p.rec.add(fmt.Sprintf("%s:%s(%d)", p.id, kind, param))
	if p.onEvent != nil {
		p.onEvent(p.host, kind, param)
	}
	return 0
}

// fakeLoader opens every path as a fakeFrontend.
type fakeLoader struct {
	rec    *recorder
	opened []string
}

func (l *fakeLoader) Open(path string) (frontend.Frontend, func() error, error) {
	l.opened = append(l.opened, path)
	return &fakeFrontend{id: frontend.BundleID(path), rec: l.rec}, nil, nil
}

type testEnv struct {
	dir     string
	cfgPath string
	eng     *player.Mock
	static  *frontend.StaticLoader
	dynamic *fakeLoader
	rec     *recorder
}

// newEnv writes a config file; coreKeys and frontendKeys are extra TOML
// lines for the [core] and [frontends] tables.
func newEnv(t *testing.T, coreKeys, frontendKeys string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:     dir,
		cfgPath: filepath.Join(dir, "config.toml"),
		static:  frontend.NewStaticLoader(),
		rec:     &recorder{},
	}
	env.dynamic = &fakeLoader{rec: env.rec}
	cfg := fmt.Sprintf("[core]\ntick_ms = 5\n%s\n[frontends]\ndir = %q\n%s",
		coreKeys, filepath.Join(dir, "frontends"), frontendKeys)
	require.NoError(t, os.WriteFile(env.cfgPath, []byte(cfg), 0o600))
	return env
}

func (e *testEnv) newCore(t *testing.T, opts Options) *Core {
	t.Helper()
	e.eng = player.NewMock(nil)
	opts.ConfigPath = e.cfgPath
	opts.Log = zerolog.Nop()
	opts.Engine = e.eng
	opts.Static = e.static
	opts.Dynamic = e.dynamic
	if opts.StatePath == "" {
		opts.StatePath = NoState
	}
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func (e *testEnv) register(ids ...string) map[string]*fakeFrontend {
	fakes := make(map[string]*fakeFrontend)
	for _, id := range ids {
		p := &fakeFrontend{id: id, rec: e.rec}
		fakes[id] = p
		e.static.Register(id, func() frontend.Frontend { return p })
	}
	return fakes
}

func runWithTimeout(t *testing.T, c *Core) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("main loop did not stop")
	}
}

func TestRun_QuitReachesEveryFrontendBeforeUnload(t *testing.T) {
	env := newEnv(t, "", "")
	fakes := env.register("a", "b")
	fakes["a"].onEvent = func(h frontend.Host, kind events.Kind, _ int) {
		if kind == events.TrackChange {
			h.RequestQuit()
		}
	}

	c := env.newCore(t, Options{Files: []string{"/music/a.mp3", "/music/b.mp3"}})
	require.Equal(t, 2, c.LoadFrontends())
	require.NoError(t, c.Restore(context.Background()))

	runWithTimeout(t, c)
	require.NoError(t, c.Close())

	playing := int(player.Playing)
	want := []string{"a:init", "b:init"}
	for _, ev := range []string{
		"PLAYLIST_CHANGE(0)",
		"TRACK_CHANGE(1)",
		fmt.Sprintf("PLAYBACK_STATE_CHANGE(%d)", playing),
		"PLAYBACK_TIME_CHANGE(0)",
		"QUIT(0)",
	} {
		want = append(want, "a:"+ev, "b:"+ev)
	}
	want = append(want, "b:shutdown", "a:shutdown")

	assert.Equal(t, want, env.rec.get())
	assert.Equal(t, []string{"/music/a.mp3"}, env.eng.Plays())
	assert.True(t, env.eng.Closed())
	assert.Zero(t, c.Frontends().Len())
}

func TestRun_ContextCancelQuits(t *testing.T) {
	env := newEnv(t, "", "")
	env.register("a")
	c := env.newCore(t, Options{})
	c.LoadFrontends()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.Run(ctx))
	require.NoError(t, c.Close())

	assert.False(t, c.Running())
	assert.Equal(t, []string{"a:init", "a:QUIT(0)", "a:shutdown"}, env.rec.get())
}

func TestRun_CommandFromAnotherGoroutine(t *testing.T) {
	env := newEnv(t, "", "")
	fakes := env.register("a")
	fakes["a"].onEvent = func(h frontend.Host, kind events.Kind, param int) {
		if kind == events.PlaybackStateChange && param == int(player.Stopped) {
			h.RequestQuit()
		}
	}

	c := env.newCore(t, Options{})
	c.LoadFrontends()
	c.AddFiles("/music/a.mp3")

	go func() {
		c.Command(playback.Command{Kind: playback.CmdPlay})
		for env.eng.Status() != player.Playing {
			time.Sleep(time.Millisecond)
		}
		c.Command(playback.Command{Kind: playback.CmdStop})
	}()

	runWithTimeout(t, c)
	require.NoError(t, c.Close())

	assert.Equal(t, []string{"/music/a.mp3"}, env.eng.Plays())
	assert.Contains(t, env.rec.get(), fmt.Sprintf("a:PLAYBACK_STATE_CHANGE(%d)", int(player.Playing)))
}

func TestRequestQuit_QueuesQuitOnce(t *testing.T) {
	env := newEnv(t, "", "")
	c := env.newCore(t, Options{})

	c.RequestQuit()
	c.RequestQuit()

	assert.False(t, c.Running())
	assert.Equal(t, 1, c.Events().Len())
	ev, ok := c.Events().Pop()
	require.True(t, ok)
	assert.Equal(t, events.Quit, ev.Kind)
	require.NoError(t, c.Close())
}

func TestShutdownAfterLast(t *testing.T) {
	env := newEnv(t, "shutdown_after_last = true\n", "")
	env.register("a")

	c := env.newCore(t, Options{Files: []string{"/music/a.mp3"}})
	c.LoadFrontends()
	require.NoError(t, c.Restore(context.Background()))

	go func() {
		for env.eng.Status() != player.Playing {
			time.Sleep(time.Millisecond)
		}
		env.eng.Finish()
	}()

	runWithTimeout(t, c)
	require.NoError(t, c.Close())

	lines := env.rec.get()
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "a:QUIT(0)", lines[len(lines)-2])
	assert.Equal(t, "a:shutdown", lines[len(lines)-1])
}

func TestLoadFrontends_StaticAndDiscovered(t *testing.T) {
	env := newEnv(t, "", "disabled = [\"off\", \"skip\"]\n")
	fakes := env.register("a", "off", "broken")
	fakes["broken"].failInit = true

	fdir := filepath.Join(env.dir, "frontends")
	require.NoError(t, os.MkdirAll(fdir, 0o755))
	for _, name := range []string{"ext.so", "skip.so", "a.so", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(fdir, name), nil, 0o600))
	}

	c := env.newCore(t, Options{})
	n := c.LoadFrontends()

	assert.Equal(t, 2, n)
	var ids []string
	for _, m := range c.Frontends().Modules() {
		ids = append(ids, m.ID())
	}
	assert.Equal(t, []string{"a", "ext"}, ids)
	assert.Equal(t, []string{filepath.Join(fdir, "ext.so")}, env.dynamic.opened)
	assert.Contains(t, env.rec.get(), "broken:init")
	require.NoError(t, c.Close())
	assert.NotContains(t, env.rec.get(), "broken:shutdown")
}

func TestLoadFrontends_ExplicitList(t *testing.T) {
	env := newEnv(t, "", "disabled = [\"off\"]\n")
	env.register("a", "off")

	c := env.newCore(t, Options{Frontends: []string{"off", "/opt/waved/remote.so"}})
	n := c.LoadFrontends()

	assert.Equal(t, 2, n)
	_, ok := c.Frontends().Lookup("off")
	assert.True(t, ok, "explicitly named frontend ignores the disabled list")
	_, ok = c.Frontends().Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"/opt/waved/remote.so"}, env.dynamic.opened)
	require.NoError(t, c.Close())
}

func TestNew_MissingConfigUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := New(Options{
		ConfigDir: dir,
		Theme:     "dark",
		Log:       zerolog.Nop(),
		Engine:    player.NewMock(nil),
		StatePath: NoState,
	})
	require.NoError(t, err)

	assert.Equal(t, 80, c.Volume())
	assert.Equal(t, playlist.Continue, c.PlayMode())
	assert.Equal(t, "dark", c.ConfigString(config.KeyUITheme))
	require.NoError(t, c.Close())

	// the configuration is written on close
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
}

func TestRestore_SavedSession(t *testing.T) {
	env := newEnv(t, "auto_play = true\n", "")
	statePath := filepath.Join(env.dir, "state", "waved.db")

	first := env.newCore(t, Options{StatePath: statePath})
	first.AddFiles("/music/a.mp3", "/music/b.mp3", "/music/c.mp3")
	require.NoError(t, first.ctl.SetPlayMode(playlist.RepeatAll))
	first.ctl.SetVolume(40)
	require.NoError(t, first.ctl.PlayPlaylistItem(1))
	env.eng.SetElapsed(42_500)
	require.NoError(t, first.Close())

	second := env.newCore(t, Options{StatePath: statePath})
	require.NoError(t, second.Restore(context.Background()))

	assert.Equal(t, 3, second.PlaylistLen())
	assert.Equal(t, playlist.RepeatAll, second.PlayMode())
	assert.Equal(t, 40, second.Volume())
	assert.True(t, second.ctl.HasPendingCommand())

	second.step(time.Millisecond)

	assert.Equal(t, []string{"/music/b.mp3"}, env.eng.Plays())
	assert.Equal(t, []time.Duration{42 * time.Second}, env.eng.Seeks())
	assert.Equal(t, 2, second.Position())
	require.NoError(t, second.Close())
}

func TestRestore_PlaylistFileReplacesSession(t *testing.T) {
	env := newEnv(t, "", "")
	m3u := filepath.Join(env.dir, "list.m3u")
	content := "#EXTM3U\n#EXTINF:180,Band - Song\nsong.mp3\n/abs/other.flac\n"
	require.NoError(t, os.WriteFile(m3u, []byte(content), 0o600))

	c := env.newCore(t, Options{PlaylistPath: m3u})
	require.NoError(t, c.Restore(context.Background()))

	entries := c.Playlist()
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Join(env.dir, "song.mp3"), entries[0].Path)
	assert.Equal(t, "Song", entries[0].Title)
	assert.Equal(t, "Band", entries[0].Artist)
	assert.Equal(t, "/abs/other.flac", entries[1].Path)
	assert.False(t, c.ctl.HasPendingCommand())
	require.NoError(t, c.Close())
}

func TestRestore_MissingPlaylistFile(t *testing.T) {
	env := newEnv(t, "", "")
	c := env.newCore(t, Options{PlaylistPath: filepath.Join(env.dir, "none.m3u")})
	assert.Error(t, c.Restore(context.Background()))
	require.NoError(t, c.Close())
}

func TestHost_PlaylistAccess(t *testing.T) {
	env := newEnv(t, "", "")
	c := env.newCore(t, Options{})

	assert.Equal(t, -1, c.AddFiles())
	assert.Equal(t, 0, c.AddFiles("/music/a.mp3", "/music/b.mp3"))
	assert.Equal(t, 2, c.AddFiles("http://radio.example/stream"))
	assert.Equal(t, 3, c.PlaylistLen())
	assert.Equal(t, "http://radio.example/stream", c.Playlist()[2].Path)

	assert.True(t, c.ToggleQueue(1))
	assert.Equal(t, 1, c.QueuePosition(1))
	assert.Equal(t, 0, c.QueuePosition(0))

	assert.True(t, c.RemoveEntry(0))
	assert.Equal(t, 2, c.PlaylistLen())
	c.ClearPlaylist()
	assert.Zero(t, c.PlaylistLen())

	require.NoError(t, c.SetConfig(config.KeyNotifyTimeout, 1200))
	assert.Equal(t, 1200, c.ConfigInt(config.KeyNotifyTimeout))
	assert.True(t, c.ConfigBool(config.KeyNotifyEnabled))
	require.NoError(t, c.Close())
}

func TestRun_NoLockNestingViolations(t *testing.T) {
	lockorder.Enable()
	defer lockorder.Disable()
	var (
		mu         sync.Mutex
		violations []lockorder.Violation
	)
	lockorder.OnViolation(func(v lockorder.Violation) {
		mu.Lock()
		violations = append(violations, v)
		mu.Unlock()
	})
	defer lockorder.OnViolation(nil)

	env := newEnv(t, "", "")
	fakes := env.register("a")
	seen := 0
	fakes["a"].onEvent = func(h frontend.Host, kind events.Kind, _ int) {
		// touch every shared object from inside the loop
		_ = h.TrackInfo()
		_ = h.Playlist()
		_ = h.ConfigString(config.KeyPlayMode)
		if kind == events.TrackChange {
			seen++
			if seen == 2 {
				h.RequestQuit()
				return
			}
			h.Command(playback.Command{Kind: playback.CmdNext})
		}
	}

	c := env.newCore(t, Options{Files: []string{"/music/a.mp3", "/music/b.mp3"}})
	c.LoadFrontends()
	require.NoError(t, c.Restore(context.Background()))
	runWithTimeout(t, c)
	require.NoError(t, c.Close())

	assert.Equal(t, []string{"/music/a.mp3", "/music/b.mp3"}, env.eng.Plays())
	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, violations)
}
