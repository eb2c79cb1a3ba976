// Package player drives audio output for the playback controller.
package player

import (
	"errors"
	"time"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrOpen              = errors.New("cannot open file")
	ErrDecode            = errors.New("cannot decode file")
	ErrNotPlaying        = errors.New("nothing is playing")
)

// Engine is the audio backend. Implementations write the metadata of the
// track they start into the shared TrackInfo under its lock.
type Engine interface {
	// Play starts path. With skipCurrent the current track is cut (or faded
	// out when fadeOut is set); otherwise path starts once the current track
	// ends.
	Play(path string, skipCurrent, fadeOut bool) error
	// PauseRequest toggles between Playing and Paused.
	PauseRequest()
	Stop()
	// Seek moves the position by offset, clamped to the track bounds.
	Seek(offset time.Duration) error
	Status() Status
	ElapsedMS() int64
	// SetVolume takes a percentage in [0, 100].
	SetVolume(percent int)
	Close() error
}

// Status is the engine state seen by the controller.
type Status int

const (
	Stopped Status = iota
	Playing
	Paused
	// Finished means the track ended on its own and nothing followed it.
	Finished
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a track is loaded (Playing or Paused).
func (s Status) IsActive() bool {
	return s == Playing || s == Paused
}
