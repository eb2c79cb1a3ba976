// Package frontend loads, drives and unloads the extensions that sit on top
// of the core: remote controls, notifiers, loggers and user interfaces.
//
// A Frontend only has to identify itself. The other hooks are optional
// interfaces checked with a type assertion when the module is loaded.
package frontend

import (
	"github.com/llehouerou/waved/internal/events"
)

// Frontend is the required part of every extension.
type Frontend interface {
	// ID is a short stable identifier, e.g. "mpris".
	ID() string
	// Name is a human readable name.
	Name() string
}

// Initializer is implemented by frontends that need setup. Returning false
// discards the module without calling Shutdown.
type Initializer interface {
	Init(h Host) bool
}

// Shutdowner is implemented by frontends that own resources. Shutdown must
// not return before every goroutine the frontend started has stopped.
type Shutdowner interface {
	Shutdown()
}

// Ticker is implemented by frontends with periodic work. Tick runs on the
// control goroutine once per loop iteration.
type Ticker interface {
	Tick()
}

// EventHandler is implemented by frontends that react to events. OnEvent
// runs on the control goroutine. The result is reserved and ignored by the
// core.
type EventHandler interface {
	OnEvent(kind events.Kind, param int) int
}

// Factory creates a frontend instance.
type Factory func() Frontend
