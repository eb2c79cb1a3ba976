// Package eventlog is a frontend appending played tracks and core events to
// a JSON lines file.
package eventlog

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/logging"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/trackinfo"
)

// ID is the frontend identifier.
const ID = "eventlog"

// Frontend writes one record per event, except time updates, and one per
// started track. Everything runs on the control goroutine.
type Frontend struct {
	host frontend.Host
	log  zerolog.Logger
	w    io.Writer
	out  zerolog.Logger
	now  func() time.Time

	started  time.Time
	lastPath string
	tracks   int
	played   time.Duration
	elapsed  time.Duration
}

// New returns the event log frontend writing to eventlog.file.
func New() frontend.Frontend { return &Frontend{} }

// NewWithWriter returns a frontend writing records to w.
func NewWithWriter(w io.Writer, now func() time.Time) *Frontend {
	return &Frontend{w: w, now: now}
}

func (f *Frontend) ID() string   { return ID }
func (f *Frontend) Name() string { return "event log" }

// Init opens the log file. Without a configured file the frontend is not
// loaded.
func (f *Frontend) Init(h frontend.Host) bool {
	f.host = h
	f.log = h.Logger(ID)
	if f.now == nil {
		f.now = time.Now
	}
	if f.w == nil {
		path := config.ExpandPath(h.ConfigString(config.KeyEventLogFile))
		if path == "" {
			return false
		}
		file, err := logging.OpenFile(path)
		if err != nil {
			f.log.Warn().Err(err).Str("path", path).Msg("event log unavailable")
			return false
		}
		f.w = file
	}

	f.out = zerolog.New(f.w).With().Timestamp().Logger()
	f.started = f.now()
	f.out.Info().Msg("session start")
	return true
}

// Shutdown writes a session summary and closes the file.
func (f *Frontend) Shutdown() {
	f.finishTrack()
	f.out.Info().
		Int("tracks", f.tracks).
		Str("listened", f.played.Round(time.Second).String()).
		Str("since", humanize.RelTime(f.started, f.now(), "ago", "from now")).
		Msg("session end")
	if c, ok := f.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			f.log.Warn().Err(err).Msg("close event log")
		}
	}
}

func (f *Frontend) OnEvent(kind events.Kind, param int) int {
	switch kind {
	case events.PlaybackTimeChange:
		f.elapsed = time.Duration(param) * time.Millisecond
		return 0
	case events.TrackChange, events.TrackInfoChange:
		f.trackStarted()
	default:
	}

	e := f.out.Debug().Str("event", kind.String()).Int("param", param)
	switch kind {
	case events.PlaybackStateChange:
		e.Stringer("status", player.Status(param))
	case events.PlaymodeChange:
		e.Stringer("mode", f.host.PlayMode())
	default:
	}
	e.Msg("event")
	return 0
}

func (f *Frontend) trackStarted() {
	if f.host.Status() != player.Playing {
		return
	}
	info := f.host.TrackInfo()
	if info.Path == "" || info.Path == f.lastPath {
		return
	}
	f.finishTrack()
	f.lastPath = info.Path
	f.tracks++
	f.out.Info().
		Int("position", f.host.Position()).
		Str("path", info.Path).
		Str("artist", info.Artist).
		Str("title", info.DisplayTitle()).
		Str("album", info.Album).
		Str("length", formatLength(info.Length)).
		Str("quality", quality(info)).
		Msg("track")
}

// finishTrack counts the time spent in the previous track.
func (f *Frontend) finishTrack() {
	f.played += f.elapsed
	f.elapsed = 0
}

func formatLength(d time.Duration) string {
	if d <= 0 {
		return "unknown"
	}
	return d.Round(time.Second).String()
}

// quality describes the stream, e.g. "FLAC 44.1 kHz 1.1 Mbit/s".
func quality(info trackinfo.Fields) string {
	s := info.FileType
	if info.SampleRate > 0 {
		s += " " + humanize.SIWithDigits(float64(info.SampleRate), 1, "Hz")
	}
	if info.Bitrate > 0 {
		s += " " + humanize.SIWithDigits(float64(info.Bitrate)*1000, 1, "bit/s")
	}
	return s
}
