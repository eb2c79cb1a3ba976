package lastfm

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/player"
)

// ID is the frontend identifier.
const ID = "lastfm"

const jobBuffer = 16

type job struct {
	nowPlaying bool
	track      ScrobbleTrack
}

// Frontend sends "now playing" updates and scrobbles. API calls run on a
// worker goroutine.
type Frontend struct {
	host      frontend.Host
	log       zerolog.Logger
	scrobbler Scrobbler
	now       func() time.Time

	jobs chan job
	wg   sync.WaitGroup

	// control goroutine only
	cur scrobbleState
}

// New returns the Last.fm frontend, configured from the lastfm.* keys.
func New() frontend.Frontend { return &Frontend{} }

// NewWithScrobbler returns a frontend submitting through s.
func NewWithScrobbler(s Scrobbler, now func() time.Time) *Frontend {
	return &Frontend{scrobbler: s, now: now}
}

func (f *Frontend) ID() string   { return ID }
func (f *Frontend) Name() string { return "Last.fm scrobbler" }

// Init fails unless API credentials and a session key are configured.
func (f *Frontend) Init(h frontend.Host) bool {
	f.host = h
	f.log = h.Logger(ID)
	if f.now == nil {
		f.now = time.Now
	}

	if f.scrobbler == nil {
		key := h.ConfigString(config.KeyLastfmAPIKey)
		secret := h.ConfigString(config.KeyLastfmAPISecret)
		session := h.ConfigString(config.KeyLastfmSessionKey)
		if key == "" || secret == "" || session == "" {
			f.log.Debug().Msg("no Last.fm credentials")
			return false
		}
		c := NewClient(key, secret)
		c.SetSessionKey(session)
		f.scrobbler = c
	}

	f.jobs = make(chan job, jobBuffer)
	f.wg.Add(1)
	go f.worker()
	return true
}

// Shutdown waits until the queued submissions are done.
func (f *Frontend) Shutdown() {
	close(f.jobs)
	f.wg.Wait()
}

func (f *Frontend) OnEvent(kind events.Kind, param int) int {
	switch kind {
	case events.TrackChange, events.TrackInfoChange:
		f.trackStarted()
	case events.PlaybackTimeChange:
		f.progress(time.Duration(param) * time.Millisecond)
	default:
	}
	return 0
}

func (f *Frontend) trackStarted() {
	if f.host.Status() != player.Playing {
		return
	}
	info := f.host.TrackInfo()
	if info.Path == "" || info.Path == f.cur.path {
		return
	}
	f.cur = scrobbleState{path: info.Path, track: trackFrom(info, f.now())}
	if f.cur.track.Artist == "" || f.cur.track.Track == "" {
		f.log.Debug().Str("path", info.Path).Msg("untagged track, not scrobbling")
		f.cur.scrobbled = true
		return
	}
	f.submit(job{nowPlaying: true, track: f.cur.track})
}

func (f *Frontend) progress(played time.Duration) {
	if f.cur.path == "" || f.cur.scrobbled {
		return
	}
	if !eligible(played, f.cur.track.Duration) {
		return
	}
	f.cur.scrobbled = true
	f.submit(job{track: f.cur.track})
}

func (f *Frontend) submit(j job) {
	select {
	case f.jobs <- j:
	default:
		f.log.Warn().Str("track", j.track.Track).Msg("scrobble queue full, dropping")
	}
}

func (f *Frontend) worker() {
	defer f.wg.Done()
	for j := range f.jobs {
		if j.nowPlaying {
			if err := f.scrobbler.UpdateNowPlaying(j.track); err != nil {
				f.log.Debug().Err(err).Msg("now playing update failed")
			}
			continue
		}
		if err := f.scrobbler.Scrobble(j.track); err != nil {
			f.log.Warn().Err(err).Str("track", j.track.Track).Msg("scrobble failed")
			continue
		}
		f.log.Debug().Str("artist", j.track.Artist).Str("track", j.track.Track).Msg("scrobbled")
	}
}
