package notify

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/trackinfo"
)

// ID is the frontend identifier.
const ID = "notify"

const fallbackIcon = "audio-x-generic"

// Frontend sends one notification per started track. Notifications are
// sent from a worker goroutine so a slow daemon never stalls the loop.
type Frontend struct {
	host      frontend.Host
	log       zerolog.Logger
	notifier  Notifier
	coverPath string

	jobs chan trackinfo.Fields
	wg   sync.WaitGroup

	// control goroutine only
	lastPath string

	// worker goroutine only
	lastID uint32
}

// New returns the notification frontend using the desktop notification
// daemon.
func New() frontend.Frontend { return &Frontend{} }

// NewWithNotifier returns a frontend sending through n, writing cover
// thumbnails to coverPath.
func NewWithNotifier(n Notifier, coverPath string) *Frontend {
	return &Frontend{notifier: n, coverPath: coverPath}
}

func (f *Frontend) ID() string   { return ID }
func (f *Frontend) Name() string { return "desktop notifications" }

// Init starts the worker. It fails when notifications are disabled or no
// notification daemon can be reached.
func (f *Frontend) Init(h frontend.Host) bool {
	f.host = h
	f.log = h.Logger(ID)

	if !h.ConfigBool(config.KeyNotifyEnabled) {
		f.log.Debug().Msg("notifications disabled")
		return false
	}
	if f.notifier == nil {
		n, err := newSystemNotifier()
		if err != nil {
			f.log.Info().Err(err).Msg("notifications unavailable")
			return false
		}
		f.notifier = n
	}
	if f.coverPath == "" {
		p, err := xdg.CacheFile(filepath.Join("waved", "notify-cover.png"))
		if err != nil {
			f.log.Debug().Err(err).Msg("no cache dir for cover thumbnails")
		}
		f.coverPath = p
	}

	f.jobs = make(chan trackinfo.Fields, 1)
	f.wg.Add(1)
	go f.worker()
	return true
}

// Shutdown stops the worker after the pending notification was sent.
func (f *Frontend) Shutdown() {
	close(f.jobs)
	f.wg.Wait()
}

// OnEvent queues a notification when the metadata of a newly started track
// arrives.
func (f *Frontend) OnEvent(kind events.Kind, _ int) int {
	switch kind {
	case events.TrackInfoChange, events.TrackChange:
	default:
		return 0
	}
	if f.host.Status() != player.Playing {
		return 0
	}
	info := f.host.TrackInfo()
	if info.Path == "" || info.Path == f.lastPath {
		return 0
	}
	f.lastPath = info.Path
	f.submit(info)
	return 0
}

// submit hands info to the worker, replacing a notification still waiting
// to be sent.
func (f *Frontend) submit(info trackinfo.Fields) {
	for {
		select {
		case f.jobs <- info:
			return
		default:
		}
		select {
		case <-f.jobs:
		default:
		}
	}
}

func (f *Frontend) worker() {
	defer f.wg.Done()
	for info := range f.jobs {
		f.send(info)
	}
}

func (f *Frontend) send(info trackinfo.Fields) {
	n := Notification{
		Title:      info.DisplayTitle(),
		Body:       body(info),
		Icon:       f.icon(info),
		Timeout:    int32(f.host.ConfigInt(config.KeyNotifyTimeout)), //nolint:gosec // small config value
		ReplacesID: f.lastID,
		Urgency:    UrgencyLow,
	}
	id, err := f.notifier.Notify(n)
	if err != nil {
		f.log.Warn().Err(err).Msg("notification failed")
		return
	}
	f.lastID = id
}

func (f *Frontend) icon(info trackinfo.Fields) string {
	if len(info.Cover) > 0 && f.coverPath != "" {
		err := writeThumbnail(info.Cover, f.coverPath)
		if err == nil {
			return f.coverPath
		}
		f.log.Debug().Err(err).Msg("cover thumbnail")
	}
	if p := trackinfo.FindCoverFile(info.Path); p != "" {
		return p
	}
	return fallbackIcon
}

func body(info trackinfo.Fields) string {
	var parts []string
	if info.Artist != "" {
		parts = append(parts, info.Artist)
	}
	if info.Album != "" {
		parts = append(parts, info.Album)
	}
	return strings.Join(parts, " - ")
}
