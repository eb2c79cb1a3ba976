// Package socket is a frontend serving a line based remote control protocol
// on a unix socket. Every connection can send commands and receives the
// core's events as they are dispatched.
package socket

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/frontend"
)

// ID is the frontend identifier.
const ID = "socket"

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Frontend owns the listener and its connections.
type Frontend struct {
	host frontend.Host
	log  zerolog.Logger
	path string

	ln net.Listener
	wg sync.WaitGroup

	mu      sync.Mutex
	clients map[*client]struct{}
	closing bool
}

// New returns the socket frontend listening on socket.path.
func New() frontend.Frontend { return &Frontend{} }

// NewAt returns a socket frontend listening on path.
func NewAt(path string) *Frontend { return &Frontend{path: path} }

func (f *Frontend) ID() string   { return ID }
func (f *Frontend) Name() string { return "unix socket remote control" }

// Init starts listening. A stale socket file left by a previous run is
// replaced.
func (f *Frontend) Init(h frontend.Host) bool {
	f.host = h
	f.log = h.Logger(ID)
	if f.path == "" {
		f.path = h.ConfigString(config.KeySocketPath)
	}
	if f.path == "" {
		f.log.Debug().Msg("no socket path configured")
		return false
	}

	ln, err := listen(f.path)
	if err != nil {
		f.log.Warn().Err(err).Str("path", f.path).Msg("socket unavailable")
		return false
	}
	f.ln = ln
	f.clients = make(map[*client]struct{})

	f.wg.Add(1)
	go f.acceptLoop()
	f.log.Info().Str("path", f.path).Msg("listening")
	return true
}

func listen(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return ln, nil
}

// Shutdown closes the listener and every connection and waits for their
// goroutines.
func (f *Frontend) Shutdown() {
	f.mu.Lock()
	f.closing = true
	for c := range f.clients {
		c.conn.Close()
	}
	f.mu.Unlock()

	f.ln.Close()
	f.wg.Wait()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.log.Debug().Err(err).Msg("remove socket")
	}
}

// OnEvent forwards the event to every connection. Slow readers lose
// events instead of stalling the loop.
func (f *Frontend) OnEvent(kind events.Kind, param int) int {
	line := fmt.Sprintf("EVENT %s %d", kind, param)
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		if !c.send(line) {
			f.log.Debug().Str("event", kind.String()).Msg("client too slow, event dropped")
		}
	}
	return 0
}

func (f *Frontend) acceptLoop() {
	defer f.wg.Done()
	var delay time.Duration
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			delay = acceptBackoff(delay)
			f.log.Warn().Err(err).Dur("retry_in", delay).Msg("accept")
			time.Sleep(delay)
			continue
		}
		delay = 0

		c := newClient(conn)
		f.mu.Lock()
		if f.closing {
			f.mu.Unlock()
			conn.Close()
			return
		}
		f.clients[c] = struct{}{}
		n := len(f.clients)
		f.mu.Unlock()
		f.log.Debug().Int("clients", n).Msg("client connected")

		f.wg.Add(2)
		go func() {
			defer f.wg.Done()
			c.writeLoop()
		}()
		go func() {
			defer f.wg.Done()
			c.readLoop(f.handle)
			f.drop(c)
		}()
	}
}

func (f *Frontend) drop(c *client) {
	f.mu.Lock()
	delete(f.clients, c)
	n := len(f.clients)
	f.mu.Unlock()
	f.log.Debug().Int("clients", n).Msg("client disconnected")
}

// acceptBackoff doubles the wait after consecutive accept failures, such as
// running out of file descriptors.
func acceptBackoff(prev time.Duration) time.Duration {
	if prev == 0 {
		return minAcceptDelay
	}
	return min(prev*2, maxAcceptDelay)
}
