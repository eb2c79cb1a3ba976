//go:build linux

// Package mpris is a frontend exposing the player on the session bus as an
// MPRIS2 media player, so desktop media keys and applets can drive it.
package mpris

import (
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/frontend"
)

// ID is the frontend identifier.
const ID = "mpris"

const (
	busName     = "waved"
	stopTimeout = 2 * time.Second // before warning
)

// Frontend serves the MPRIS2 interfaces.
type Frontend struct {
	host   frontend.Host
	log    zerolog.Logger
	server *server.Server
	done   chan struct{}
}

// New returns the MPRIS frontend.
func New() frontend.Frontend { return &Frontend{} }

func (f *Frontend) ID() string   { return ID }
func (f *Frontend) Name() string { return "MPRIS remote control" }

// Init starts serving on the session bus. It fails when there is no
// session bus.
func (f *Frontend) Init(h frontend.Host) bool {
	f.host = h
	f.log = h.Logger(ID)

	if _, err := dbus.SessionBus(); err != nil {
		f.log.Info().Err(err).Msg("no session bus, MPRIS disabled")
		return false
	}

	f.server = server.NewServer(busName, &rootAdapter{host: h}, &playerAdapter{host: h})
	f.done = make(chan struct{})
	go func() {
		defer close(f.done)
		if err := f.server.Listen(); err != nil {
			f.log.Warn().Err(err).Msg("MPRIS listener stopped")
		}
	}()
	return true
}

// Shutdown releases the bus name and waits for the listener to return.
func (f *Frontend) Shutdown() {
	if err := f.server.Stop(); err != nil {
		f.log.Debug().Err(err).Msg("stop MPRIS server")
	}
	awaitListener(f.done, stopTimeout, f.log)
}

// awaitListener blocks until done is closed, warning once if that takes
// longer than warnAfter.
func awaitListener(done <-chan struct{}, warnAfter time.Duration, log zerolog.Logger) {
	select {
	case <-done:
		return
	case <-time.After(warnAfter):
		log.Warn().Dur("after", warnAfter).Msg("MPRIS listener slow to stop, still waiting")
	}
	<-done
}
