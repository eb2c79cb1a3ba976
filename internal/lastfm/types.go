package lastfm

import (
	"time"

	"github.com/llehouerou/waved/internal/trackinfo"
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist      string
	Track       string
	Album       string
	AlbumArtist string
	TrackNumber int
	Duration    time.Duration
	Timestamp   time.Time // When playback started
}

func trackFrom(f trackinfo.Fields, started time.Time) ScrobbleTrack {
	return ScrobbleTrack{
		Artist:      f.Artist,
		Track:       f.Title,
		Album:       f.Album,
		AlbumArtist: f.AlbumArtist,
		TrackNumber: f.TrackNumber,
		Duration:    f.Length,
		Timestamp:   started,
	}
}

// scrobbleState tracks the scrobbling status of the current track.
type scrobbleState struct {
	path      string
	track     ScrobbleTrack
	scrobbled bool
}

const (
	minScrobbleLength = 30 * time.Second
	maxScrobbleWait   = 4 * time.Minute
)

// eligible applies the Last.fm rule: a track longer than 30 seconds is
// scrobbled once half of it, or four minutes, has been played. Without a
// known length only the four minutes count.
func eligible(played, length time.Duration) bool {
	if length > 0 && length <= minScrobbleLength {
		return false
	}
	if length > 0 && played >= length/2 {
		return true
	}
	return played >= maxScrobbleWait
}
