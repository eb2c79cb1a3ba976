package frontend

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/waved/internal/events"
)

// recorder collects hook calls across fakes in call order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.calls = append(r.calls, s)
	r.mu.Unlock()
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// bare implements only the required part.
type bare struct{ id string }

func (b *bare) ID() string   { return b.id }
func (b *bare) Name() string { return "bare " + b.id }

// full implements every hook.
type full struct {
	bare
	rec      *recorder
	initOK   bool
	onInit   func()
	shutdown func()
}

func (f *full) Init(Host) bool {
	f.rec.add(f.id + ":init")
	if f.onInit != nil {
		f.onInit()
	}
	return f.initOK
}

func (f *full) Shutdown() {
	f.rec.add(f.id + ":shutdown")
	if f.shutdown != nil {
		f.shutdown()
	}
}

func (f *full) Tick() { f.rec.add(f.id + ":tick") }

func (f *full) OnEvent(kind events.Kind, param int) int {
	f.rec.add(f.id + ":" + kind.String())
	return 0
}

func newFull(id string, rec *recorder) *full {
	return &full{bare: bare{id: id}, rec: rec, initOK: true}
}

func newRegistry() *Registry {
	return NewRegistry(nil, zerolog.Nop())
}

func TestRegister_InitFailureDiscards(t *testing.T) {
	rec := &recorder{}
	r := newRegistry()
	bad := newFull("bad", rec)
	bad.initOK = false
	released := false

	m, err := r.Register("bad", bad, func() error { released = true; return nil })

	assert.Nil(t, m)
	require.ErrorIs(t, err, ErrInitFailed)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, InitFailed, le.Kind)
	assert.True(t, released)
	assert.Zero(t, r.Len())

	it := r.Iterate()
	_, ok := it.First()
	assert.False(t, ok)

	r.UnloadAll()
	assert.Equal(t, []string{"bad:init"}, rec.get())
}

func TestRegister_InitPanicDiscards(t *testing.T) {
	rec := &recorder{}
	r := newRegistry()
	f := newFull("boom", rec)
	f.onInit = func() { panic("kaboom") }

	_, err := r.Register("boom", f, nil)

	require.ErrorIs(t, err, ErrInitFailed)
	assert.Zero(t, r.Len())
}

func TestUnload_ShutdownOnceBeforeRemoval(t *testing.T) {
	rec := &recorder{}
	r := newRegistry()
	f := newFull("a", rec)

	var (
		presentDuringShutdown bool
		workerStopped         = make(chan struct{})
	)
	stop := make(chan struct{})
	go func() {
		<-stop
		time.Sleep(10 * time.Millisecond)
		close(workerStopped)
	}()
	f.shutdown = func() {
		_, presentDuringShutdown = r.Lookup("a")
		close(stop)
		<-workerStopped
	}

	m, err := r.Register("a", f, nil)
	require.NoError(t, err)
	assert.Equal(t, Running, m.State())

	done := make(chan struct{})
	go func() {
		r.Unload(m)
		r.Unload(m)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Unload did not return")
	}

	assert.True(t, presentDuringShutdown)
	assert.Equal(t, []string{"a:init", "a:shutdown"}, rec.get())
	assert.Equal(t, Unloaded, m.State())
	assert.Zero(t, r.Len())
}

func TestUnloadAll_ReverseOrder(t *testing.T) {
	rec := &recorder{}
	r := newRegistry()
	for _, id := range []string{"a", "b", "c"} {
		_, err := r.Register(id, newFull(id, rec), nil)
		require.NoError(t, err)
	}

	r.UnloadAll()

	assert.Equal(t, []string{
		"a:init", "b:init", "c:init",
		"c:shutdown", "b:shutdown", "a:shutdown",
	}, rec.get())
	assert.Zero(t, r.Len())
}

func TestTickAndDispatch_RegistrationOrder(t *testing.T) {
	rec := &recorder{}
	r := newRegistry()
	_, _ = r.Register("a", newFull("a", rec), nil)
	_, _ = r.Register("plain", &bare{id: "plain"}, nil)
	_, _ = r.Register("b", newFull("b", rec), nil)

	r.Tick()
	r.Dispatch(events.Event{Kind: events.Quit})

	assert.Equal(t, []string{
		"a:init", "b:init",
		"a:tick", "b:tick",
		"a:QUIT", "b:QUIT",
	}, rec.get())
}

type panicky struct{ bare }

func (panicky) Tick()                        { panic("tick") }
func (panicky) OnEvent(events.Kind, int) int { panic("event") }

func TestHookPanicIsContained(t *testing.T) {
	rec := &recorder{}
	r := newRegistry()
	_, _ = r.Register("p", &panicky{bare{id: "p"}}, nil)
	_, _ = r.Register("a", newFull("a", rec), nil)

	assert.NotPanics(t, func() {
		r.Tick()
		r.Dispatch(events.Event{Kind: events.TrackChange, Param: 1})
	})
	assert.Equal(t, []string{"a:init", "a:tick", "a:TRACK_CHANGE"}, rec.get())
}

func TestIterator(t *testing.T) {
	r := newRegistry()
	ms := make([]*Module, 0, 3)
	for _, id := range []string{"a", "b", "c"} {
		m, err := r.Register(id, &bare{id: id}, nil)
		require.NoError(t, err)
		ms = append(ms, m)
	}

	collect := func(it *Iterator) []string {
		var ids []string
		for m, ok := it.First(); ok; m, ok = it.Next() {
			ids = append(ids, m.ID())
		}
		return ids
	}

	it := r.Iterate()
	assert.Equal(t, []string{"a", "b", "c"}, collect(it))
	// restartable
	assert.Equal(t, []string{"a", "b", "c"}, collect(it))

	// independent cursors
	it1, it2 := r.Iterate(), r.Iterate()
	m1, _ := it1.First()
	m1, _ = it1.Next()
	m2, _ := it2.First()
	assert.Equal(t, "b", m1.ID())
	assert.Equal(t, "a", m2.ID())

	// removal of the current module while iterating
	first, _ := it2.First()
	require.Equal(t, "a", first.ID())
	r.Unload(ms[0])
	next, ok := it2.Next()
	require.True(t, ok)
	assert.Equal(t, "b", next.ID())
}

func TestStaticLoader(t *testing.T) {
	s := NewStaticLoader()
	s.Register("b", func() Frontend { return &bare{id: "b"} })
	s.Register("a", func() Frontend { return &bare{id: "a"} })
	s.Register("b", func() Frontend { return &bare{id: "b2"} })
	s.Register("nil", func() Frontend { return nil })

	assert.Equal(t, []string{"b", "a", "nil"}, s.IDs())
	assert.True(t, s.Has("a"))

	fe, _, err := s.Open("b")
	require.NoError(t, err)
	assert.Equal(t, "b2", fe.ID())

	_, _, err = s.Open("zzz")
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, _, err = s.Open("nil")
	assert.ErrorIs(t, err, ErrSymbolMissing)
}

func TestRegistryLoad_PropagatesLoaderError(t *testing.T) {
	r := newRegistry()
	_, err := r.Load(NewStaticLoader(), "missing")
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.Zero(t, r.Len())
}

func TestDynamicLoader_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.so")
	require.NoError(t, os.WriteFile(path, []byte("not an object file"), 0o600))

	_, _, err := DynamicLoader{}.Open(path)

	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.so", "a.so", "readme.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.so"), 0o755))

	got, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.so"), filepath.Join(dir, "b.so")}, got)

	got, err = Discover(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBundleID(t *testing.T) {
	assert.Equal(t, "mpris", BundleID("/usr/lib/waved/mpris.so"))
}

func TestLoadError(t *testing.T) {
	inner := errors.New("bad elf")
	err := error(&LoadError{Path: "/x.so", Kind: LoadFailed, Err: inner})

	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.ErrorIs(t, err, inner)
	assert.NotErrorIs(t, err, ErrInitFailed)
	assert.Equal(t, "frontend /x.so: load failed: bad elf", err.Error())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "shutting-down", ShuttingDown.String())
}
