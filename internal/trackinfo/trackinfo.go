// Package trackinfo holds the metadata of the current track.
package trackinfo

import (
	"time"

	"github.com/llehouerou/waved/internal/lockorder"
)

// Fields is the metadata of one track. The zero value means "nothing known".
type Fields struct {
	Path        string
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Genre       string
	Year        int
	TrackNumber int
	DiscNumber  int
	Length      time.Duration
	Bitrate     int // kbit/s, 0 if unknown
	SampleRate  int
	Channels    int
	FileType    string
	Cover       []byte
	CoverMIME   string
}

// DisplayTitle falls back to the file name when no title tag is present.
func (f Fields) DisplayTitle() string {
	if f.Title != "" {
		return f.Title
	}
	return baseName(f.Path)
}

// TrackInfo is a Fields record plus an "updated" flag.
//
// The shared instance is created lockable and callers bracket access with
// Lock/Unlock. Transient instances (for example one built while reading a
// file's tags) are not lockable and Lock/Unlock do nothing.
type TrackInfo struct {
	mu       *lockorder.Mutex
	fields   Fields
	updated  bool
	lockable bool
}

// New creates an empty TrackInfo.
func New(lockable bool) *TrackInfo {
	ti := &TrackInfo{lockable: lockable}
	if lockable {
		ti.mu = &lockorder.Mutex{Name: "trackinfo"}
	}
	return ti
}

// Lockable reports whether Lock and Unlock take a real lock.
func (ti *TrackInfo) Lockable() bool { return ti.lockable }

func (ti *TrackInfo) Lock() {
	if ti.lockable {
		ti.mu.Lock()
	}
}

func (ti *TrackInfo) Unlock() {
	if ti.lockable {
		ti.mu.Unlock()
	}
}

// Fields returns a copy of the record. Caller holds the lock.
func (ti *TrackInfo) Fields() Fields {
	f := ti.fields
	if f.Cover != nil {
		f.Cover = append([]byte(nil), f.Cover...)
	}
	return f
}

// Set replaces the record and marks it updated. Caller holds the lock.
func (ti *TrackInfo) Set(f Fields) {
	ti.fields = f
	ti.updated = true
}

// Update applies fn to the record and marks it updated. Caller holds the
// lock.
func (ti *TrackInfo) Update(fn func(*Fields)) {
	fn(&ti.fields)
	ti.updated = true
}

// Clear empties the record and marks it updated. Caller holds the lock.
func (ti *TrackInfo) Clear() {
	ti.fields = Fields{}
	ti.updated = true
}

// IsUpdated reports whether the record changed since the last call and
// clears the flag. Caller holds the lock.
func (ti *TrackInfo) IsUpdated() bool {
	u := ti.updated
	ti.updated = false
	return u
}

// Snapshot locks, copies and unlocks.
func (ti *TrackInfo) Snapshot() Fields {
	ti.Lock()
	defer ti.Unlock()
	return ti.Fields()
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
