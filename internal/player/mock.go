package player

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/llehouerou/waved/internal/trackinfo"
)

// PlayCall records one Play request made to a Mock.
type PlayCall struct {
	Path        string
	SkipCurrent bool
	FadeOut     bool
}

// Mock is a test double for Engine. Paths registered with Fail make Play
// return ErrOpen.
type Mock struct {
	mu      sync.Mutex
	info    *trackinfo.TrackInfo
	status  Status
	elapsed int64
	volume  int
	fail    map[string]bool
	plays   []PlayCall
	seeks   []time.Duration
	pauses  int
	stops   int
	closed  bool
}

var _ Engine = (*Mock)(nil)

// NewMock creates a mock engine. info may be nil.
func NewMock(info *trackinfo.TrackInfo) *Mock {
	return &Mock{
		info:   info,
		volume: 100,
		fail:   make(map[string]bool),
	}
}

// Fail makes Play fail for the given paths.
func (m *Mock) Fail(paths ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		m.fail[p] = true
	}
}

func (m *Mock) Play(path string, skipCurrent, fadeOut bool) error {
	m.mu.Lock()
	m.plays = append(m.plays, PlayCall{Path: path, SkipCurrent: skipCurrent, FadeOut: fadeOut})
	if m.fail[path] {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrOpen, path)
	}
	m.status = Playing
	m.elapsed = 0
	m.mu.Unlock()

	if m.info != nil {
		m.info.Lock()
		m.info.Set(trackinfo.Fields{Path: path, Title: filepath.Base(path)})
		m.info.Unlock()
	}
	return nil
}

func (m *Mock) PauseRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses++
	switch m.status {
	case Playing:
		m.status = Paused
	case Paused:
		m.status = Playing
	case Stopped, Finished:
	}
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.status = Stopped
	m.elapsed = 0
}

func (m *Mock) Seek(offset time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.status.IsActive() {
		return ErrNotPlaying
	}
	m.seeks = append(m.seeks, offset)
	m.elapsed = max(m.elapsed+offset.Milliseconds(), 0)
	return nil
}

func (m *Mock) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Mock) ElapsedMS() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

func (m *Mock) SetVolume(percent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = clampPercent(percent)
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.status = Stopped
	return nil
}

// Finish simulates the current track ending on its own.
func (m *Mock) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = Finished
}

// SetElapsed sets the reported position.
func (m *Mock) SetElapsed(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elapsed = ms
}

// Plays returns the paths passed to Play, in order.
func (m *Mock) Plays() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.plays))
	for i, c := range m.plays {
		out[i] = c.Path
	}
	return out
}

// PlayCalls returns every Play request.
func (m *Mock) PlayCalls() []PlayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlayCall(nil), m.plays...)
}

// Seeks returns every successful Seek offset.
func (m *Mock) Seeks() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seeks...)
}

// Volume returns the last volume set.
func (m *Mock) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Stops returns how many times Stop was called.
func (m *Mock) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Pauses returns how many times PauseRequest was called.
func (m *Mock) Pauses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauses
}
