package frontend

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/events"
)

// State is the lifecycle stage of a Module.
type State int32

const (
	Unloaded State = iota
	Initializing
	Running
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting-down"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Module is a loaded frontend plus its lifecycle state. Once Unloaded a
// module is never driven again.
type Module struct {
	path    string
	fe      Frontend
	release func() error
	state   atomic.Int32

	unloadOnce sync.Once
}

func newModule(path string, fe Frontend, release func() error) *Module {
	if release == nil {
		release = func() error { return nil }
	}
	return &Module{path: path, fe: fe, release: release}
}

func (m *Module) ID() string         { return m.fe.ID() }
func (m *Module) Name() string       { return m.fe.Name() }
func (m *Module) Path() string       { return m.path }
func (m *Module) Frontend() Frontend { return m.fe }
func (m *Module) State() State       { return State(m.state.Load()) }

func (m *Module) setState(s State) { m.state.Store(int32(s)) }

// tick runs the periodic hook if the module has one.
func (m *Module) tick(log zerolog.Logger) {
	t, ok := m.fe.(Ticker)
	if !ok || m.State() != Running {
		return
	}
	m.guard(log, "tick", t.Tick)
}

// deliver runs the event hook if the module has one.
func (m *Module) deliver(log zerolog.Logger, ev events.Event) {
	h, ok := m.fe.(EventHandler)
	if !ok || m.State() != Running {
		return
	}
	m.guard(log, "event", func() { h.OnEvent(ev.Kind, ev.Param) })
}

// guard runs fn and turns a panic into a log entry.
func (m *Module) guard(log zerolog.Logger, hook string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("frontend", m.ID()).
				Str("hook", hook).
				Interface("panic", r).
				Msg("frontend hook panicked")
			ok = false
		}
	}()
	fn()
	return true
}
