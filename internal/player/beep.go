package player

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/trackinfo"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
)

// outputRate is the speaker sample rate; tracks at other rates are
// resampled.
const outputRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Supported reports whether path has an extension the engine decodes.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extFLAC, extWAV:
		return true
	}
	return false
}

// BeepEngine plays files through the system audio device.
type BeepEngine struct {
	log  zerolog.Logger
	info *trackinfo.TrackInfo
	fade time.Duration

	// guarded by the speaker lock
	deck *deck
	ctrl *beep.Ctrl
	vol  *effects.Volume

	startOnce sync.Once
	startErr  error
	started   atomic.Bool
	closeOnce sync.Once

	status  atomic.Int32
	gen     atomic.Uint64
	percent atomic.Int32

	inboxMu sync.Mutex
	inbox   []note
	wake    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

var _ Engine = (*BeepEngine)(nil)

// NewBeepEngine creates an engine that publishes track metadata into info.
// fade is the fade-out length used when Play is called with fadeOut.
// The audio device is opened on the first Play.
func NewBeepEngine(log zerolog.Logger, info *trackinfo.TrackInfo, fade time.Duration) *BeepEngine {
	e := &BeepEngine{
		log:  log.With().Str("component", "engine").Logger(),
		info: info,
		fade: fade,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	e.deck = &deck{notify: e.post}
	e.ctrl = &beep.Ctrl{Streamer: e.deck}
	e.vol = &effects.Volume{Streamer: e.ctrl, Base: 2}
	e.percent.Store(100)

	e.wg.Add(1)
	go e.run()
	return e
}

func (e *BeepEngine) start() error {
	e.startOnce.Do(func() {
		speakerOnce.Do(func() {
			speakerErr = speaker.Init(outputRate, outputRate.N(time.Second/10))
		})
		if speakerErr != nil {
			e.startErr = fmt.Errorf("init audio output: %w", speakerErr)
			return
		}
		speaker.Play(e.vol)
		e.started.Store(true)
	})
	return e.startErr
}

func (e *BeepEngine) Play(path string, skipCurrent, fadeOut bool) error {
	s, err := openStream(path)
	if err != nil {
		return err
	}
	if err := e.start(); err != nil {
		s.close()
		return err
	}
	s.gen = e.gen.Add(1)

	var released []*stream
	speaker.Lock()
	immediate := skipCurrent || e.deck.cur == nil
	if immediate {
		if old := e.deck.cur; old != nil {
			if fadeOut && e.fade > 0 {
				e.deck.fadeOut(old, outputRate.N(e.fade))
			} else {
				released = append(released, old)
			}
		}
		e.deck.cur = s
		e.ctrl.Paused = false
	}
	if e.deck.next != nil {
		released = append(released, e.deck.next)
	}
	e.deck.next = nil
	if !immediate {
		e.deck.next = s
	}
	speaker.Unlock()

	for _, r := range released {
		r.close()
	}
	if immediate {
		e.status.Store(int32(Playing))
		e.publish(s)
	}
	e.log.Debug().Str("path", path).Bool("immediate", immediate).Msg("play")
	return nil
}

func (e *BeepEngine) PauseRequest() {
	switch e.Status() {
	case Playing:
		speaker.Lock()
		e.ctrl.Paused = true
		speaker.Unlock()
		e.status.Store(int32(Paused))
	case Paused:
		speaker.Lock()
		e.ctrl.Paused = false
		speaker.Unlock()
		e.status.Store(int32(Playing))
	case Stopped, Finished:
	}
}

func (e *BeepEngine) Stop() {
	e.gen.Add(1)
	speaker.Lock()
	released := e.deck.reset()
	e.ctrl.Paused = false
	speaker.Unlock()
	for _, r := range released {
		r.close()
	}
	e.status.Store(int32(Stopped))
}

func (e *BeepEngine) Seek(offset time.Duration) error {
	speaker.Lock()
	defer speaker.Unlock()
	s := e.deck.cur
	if s == nil {
		return ErrNotPlaying
	}
	pos := s.dec.Position() + s.format.SampleRate.N(offset)
	pos = min(max(pos, 0), s.dec.Len())
	if err := s.dec.Seek(pos); err != nil {
		return fmt.Errorf("seek %s: %w", s.path, err)
	}
	return nil
}

func (e *BeepEngine) Status() Status {
	return Status(e.status.Load())
}

func (e *BeepEngine) ElapsedMS() int64 {
	speaker.Lock()
	defer speaker.Unlock()
	s := e.deck.cur
	if s == nil {
		return 0
	}
	return s.format.SampleRate.D(s.dec.Position()).Milliseconds()
}

func (e *BeepEngine) SetVolume(percent int) {
	percent = clampPercent(percent)
	e.percent.Store(int32(percent))
	speaker.Lock()
	e.vol.Volume = levelToVolume(float64(percent) / 100)
	e.vol.Silent = percent == 0
	speaker.Unlock()
}

// Volume returns the last volume set, in percent.
func (e *BeepEngine) Volume() int { return int(e.percent.Load()) }

func (e *BeepEngine) Close() error {
	e.closeOnce.Do(func() {
		e.Stop()
		close(e.done)
		e.wg.Wait()
		if e.started.Load() {
			speaker.Clear()
		}
	})
	return nil
}

// post is called by the deck under the speaker lock.
func (e *BeepEngine) post(n note) {
	e.inboxMu.Lock()
	e.inbox = append(e.inbox, n)
	e.inboxMu.Unlock()
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *BeepEngine) run() {
	defer e.wg.Done()
	for {
		select {
		case <-e.done:
			e.drain()
			return
		case <-e.wake:
			e.drain()
		}
	}
}

func (e *BeepEngine) drain() {
	e.inboxMu.Lock()
	notes := e.inbox
	e.inbox = nil
	e.inboxMu.Unlock()

	for _, n := range notes {
		if n.released != nil {
			n.released.close()
		}
		if n.ended == nil {
			continue
		}
		n.ended.close()
		switch {
		case n.started != nil:
			e.publish(n.started)
		case n.ended.gen == e.gen.Load():
			e.status.Store(int32(Finished))
			e.log.Debug().Str("path", n.ended.path).Msg("track finished")
		}
	}
}

func (e *BeepEngine) publish(s *stream) {
	if e.info == nil {
		return
	}
	e.info.Lock()
	e.info.Set(s.fields)
	e.info.Unlock()
}

func openStream(path string) (*stream, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	var (
		dec    beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case extMP3:
		dec, format, err = mp3.Decode(f)
	case extFLAC:
		// some taggers prepend ID3v2 to FLAC files
		if err = skipID3v2(f); err == nil {
			dec, format, err = flac.Decode(f)
		}
	case extWAV:
		dec, format, err = wav.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	fields, _ := trackinfo.ReadFile(path)
	fields.Length = format.SampleRate.D(dec.Len())
	fields.SampleRate = int(format.SampleRate)
	fields.Channels = format.NumChannels
	if st, err := f.Stat(); err == nil && fields.Length > 0 {
		fields.Bitrate = int(float64(st.Size()*8) / fields.Length.Seconds() / 1000)
	}

	var src beep.Streamer = dec
	if format.SampleRate != outputRate {
		src = beep.Resample(4, format.SampleRate, outputRate, dec)
	}
	return &stream{
		path:   path,
		file:   f,
		dec:    dec,
		format: format,
		src:    src,
		fields: fields,
	}, nil
}

// skipID3v2 skips an ID3v2 tag at the start of r, if any.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && n < len(header) {
		_, serr := r.Seek(0, io.SeekStart)
		return serr
	}
	if string(header[:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	// syncsafe integer: 7 bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
