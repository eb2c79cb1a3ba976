package frontend

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/events"
)

// Registry keeps the running modules in load order.
type Registry struct {
	host Host
	log  zerolog.Logger

	mu      sync.RWMutex
	modules []*Module
}

// NewRegistry creates an empty registry. host is passed to every module's
// Init.
func NewRegistry(host Host, log zerolog.Logger) *Registry {
	return &Registry{
		host: host,
		log:  log.With().Str("component", "frontends").Logger(),
	}
}

// Load opens path with l, initializes the frontend and registers it. A
// frontend whose Init returns false is released at once and never
// registered.
func (r *Registry) Load(l Loader, path string) (*Module, error) {
	fe, release, err := l.Open(path)
	if err != nil {
		r.log.Warn().Err(err).Str("path", path).Msg("cannot load frontend")
		return nil, err
	}
	return r.Register(path, fe, release)
}

// Register initializes an already opened frontend and adds it to the
// registry.
func (r *Registry) Register(path string, fe Frontend, release func() error) (*Module, error) {
	m := newModule(path, fe, release)
	m.setState(Initializing)

	if in, ok := fe.(Initializer); ok {
		var initOK bool
		if !m.guard(r.log, "init", func() { initOK = in.Init(r.host) }) {
			initOK = false
		}
		if !initOK {
			m.setState(Unloaded)
			if err := m.release(); err != nil {
				r.log.Warn().Err(err).Str("frontend", fe.ID()).Msg("release failed")
			}
			err := &LoadError{Path: path, Kind: InitFailed}
			r.log.Warn().Err(err).Msg("frontend discarded")
			return nil, err
		}
	}

	m.setState(Running)
	r.mu.Lock()
	r.modules = append(r.modules, m)
	r.mu.Unlock()
	r.log.Info().Str("frontend", fe.ID()).Str("name", fe.Name()).Msg("frontend loaded")
	return m, nil
}

// Unload shuts the module down, removes it from the registry and releases
// it. Shutdown completes before the module leaves the registry. Calling
// Unload again is a no-op.
func (r *Registry) Unload(m *Module) {
	if m == nil {
		return
	}
	m.unloadOnce.Do(func() {
		if m.State() != Running {
			return
		}
		m.setState(ShuttingDown)
		if sd, ok := m.fe.(Shutdowner); ok {
			m.guard(r.log, "shutdown", sd.Shutdown)
		}

		r.mu.Lock()
		if i := slices.Index(r.modules, m); i >= 0 {
			r.modules = slices.Delete(r.modules, i, i+1)
		}
		r.mu.Unlock()

		if err := m.release(); err != nil {
			r.log.Warn().Err(err).Str("frontend", m.ID()).Msg("release failed")
		}
		m.setState(Unloaded)
		r.log.Debug().Str("frontend", m.ID()).Msg("frontend unloaded")
	})
}

// UnloadAll unloads every module, most recently loaded first.
func (r *Registry) UnloadAll() {
	mods := r.Modules()
	for i := len(mods) - 1; i >= 0; i-- {
		r.Unload(mods[i])
	}
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// Modules returns a snapshot of the registered modules.
func (r *Registry) Modules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.modules)
}

// Lookup returns the registered module with the given ID.
func (r *Registry) Lookup(id string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.modules {
		if m.ID() == id {
			return m, true
		}
	}
	return nil, false
}

// Iterate returns a new iterator over the registered modules. Each caller
// gets its own cursor.
func (r *Registry) Iterate() *Iterator {
	return &Iterator{r: r}
}

// Tick runs every module's periodic hook in registration order.
func (r *Registry) Tick() {
	it := r.Iterate()
	for m, ok := it.First(); ok; m, ok = it.Next() {
		m.tick(r.log)
	}
}

// Dispatch delivers ev to every module's event hook in registration order.
func (r *Registry) Dispatch(ev events.Event) {
	it := r.Iterate()
	for m, ok := it.First(); ok; m, ok = it.Next() {
		m.deliver(r.log, ev)
	}
}

// Iterator walks the registry lazily. The registry lock is only held inside
// First and Next, so hooks run while iterating may use the registry.
type Iterator struct {
	r    *Registry
	last *Module
	pos  int
}

// First restarts the iteration and returns the first module.
func (it *Iterator) First() (*Module, bool) {
	it.last = nil
	it.pos = 0
	return it.at()
}

// Next returns the module following the last one returned. Modules removed
// meanwhile are skipped.
func (it *Iterator) Next() (*Module, bool) {
	it.r.mu.RLock()
	if it.last != nil {
		if i := slices.Index(it.r.modules, it.last); i >= 0 {
			it.pos = i + 1
		}
	}
	it.r.mu.RUnlock()
	return it.at()
}

func (it *Iterator) at() (*Module, bool) {
	it.r.mu.RLock()
	defer it.r.mu.RUnlock()
	if it.pos >= len(it.r.modules) {
		it.last = nil
		return nil, false
	}
	it.last = it.r.modules[it.pos]
	return it.last, true
}
