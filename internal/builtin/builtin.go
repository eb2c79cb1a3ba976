// Package builtin lists the frontends compiled into the player.
package builtin

import (
	"github.com/llehouerou/waved/internal/eventlog"
	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/lastfm"
	"github.com/llehouerou/waved/internal/mpris"
	"github.com/llehouerou/waved/internal/notify"
	"github.com/llehouerou/waved/internal/socket"
	"github.com/llehouerou/waved/internal/ui/playerbar"
)

// Register adds every built-in frontend to s, in the order they receive
// events.
func Register(s *frontend.StaticLoader) {
	s.Register(socket.ID, socket.New)
	s.Register(mpris.ID, mpris.New)
	s.Register(notify.ID, notify.New)
	s.Register(lastfm.ID, lastfm.New)
	s.Register(eventlog.ID, eventlog.New)
	s.Register(playerbar.ID, playerbar.New)
}

// Loader returns a static loader holding the built-in frontends.
func Loader() *frontend.StaticLoader {
	s := frontend.NewStaticLoader()
	Register(s)
	return s
}
