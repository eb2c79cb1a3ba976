package player

import (
	"os"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/waved/internal/trackinfo"
)

// stream is one opened track.
type stream struct {
	path   string
	file   *os.File
	dec    beep.StreamSeekCloser
	format beep.Format
	src    beep.Streamer // dec, resampled to the output rate if needed
	fields trackinfo.Fields
	gen    uint64
}

func (s *stream) close() {
	if s.dec != nil {
		s.dec.Close()
	}
	if s.file != nil {
		s.file.Close()
	}
}

// note reports a deck transition to the engine goroutine.
type note struct {
	ended    *stream // drained on its own
	started  *stream // became current after ended
	released *stream // finished fading out
}

// fade scales a stream down to silence over total samples.
type fade struct {
	s     *stream
	total int
	left  int
}

func (f *fade) Stream(samples [][2]float64) (int, bool) {
	if f.left <= 0 {
		return 0, false
	}
	n, ok := f.s.src.Stream(samples)
	for i := range n {
		if f.left <= 0 {
			return i, false
		}
		gain := float64(f.left) / float64(f.total)
		samples[i][0] *= gain
		samples[i][1] *= gain
		f.left--
	}
	return n, ok
}

func (f *fade) Err() error { return nil }

// deck is the single streamer handed to the speaker. It plays cur, moves to
// next when cur drains, and mixes in any tracks that are fading out. It
// never drains itself: with nothing loaded it outputs silence.
//
// All fields are guarded by the speaker lock.
type deck struct {
	cur    *stream
	next   *stream
	fading []*fade
	buf    [][2]float64
	notify func(note)
}

func (d *deck) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) && d.cur != nil {
		want := len(samples) - filled
		n, ok := d.cur.src.Stream(samples[filled:])
		filled += n
		if !ok || n < want {
			ended := d.cur
			d.cur, d.next = d.next, nil
			d.notify(note{ended: ended, started: d.cur})
		}
	}
	clear(samples[filled:])

	if len(d.fading) > 0 {
		if cap(d.buf) < len(samples) {
			d.buf = make([][2]float64, len(samples))
		}
		buf := d.buf[:len(samples)]
		kept := d.fading[:0]
		for _, f := range d.fading {
			n, ok := f.Stream(buf)
			for i := range n {
				samples[i][0] += buf[i][0]
				samples[i][1] += buf[i][1]
			}
			if !ok || n < len(buf) {
				d.notify(note{released: f.s})
				continue
			}
			kept = append(kept, f)
		}
		clear(d.fading[len(kept):])
		d.fading = kept
	}
	return len(samples), true
}

func (d *deck) Err() error { return nil }

// fadeOut moves s to the fading set.
func (d *deck) fadeOut(s *stream, samples int) {
	d.fading = append(d.fading, &fade{s: s, total: samples, left: samples})
}

// reset detaches every stream and returns them for closing.
func (d *deck) reset() []*stream {
	var out []*stream
	if d.cur != nil {
		out = append(out, d.cur)
	}
	if d.next != nil {
		out = append(out, d.next)
	}
	for _, f := range d.fading {
		out = append(out, f.s)
	}
	d.cur, d.next, d.fading = nil, nil, nil
	return out
}
