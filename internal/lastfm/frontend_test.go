package lastfm

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/frontend/frontendtest"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/trackinfo"
)

type fakeScrobbler struct {
	mu         sync.Mutex
	nowPlaying []ScrobbleTrack
	scrobbles  []ScrobbleTrack
	err        error
}

func (s *fakeScrobbler) UpdateNowPlaying(t ScrobbleTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowPlaying = append(s.nowPlaying, t)
	return s.err
}

func (s *fakeScrobbler) Scrobble(t ScrobbleTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrobbles = append(s.scrobbles, t)
	return s.err
}

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestFrontend(t *testing.T, s Scrobbler) (*Frontend, *frontendtest.Host) {
	t.Helper()
	h := frontendtest.New()
	f := NewWithScrobbler(s, func() time.Time { return start })
	require.True(t, f.Init(h))
	return f, h
}

func song(path string, length time.Duration) trackinfo.Fields {
	return trackinfo.Fields{
		Path:   path,
		Title:  "Song " + path,
		Artist: "Band",
		Album:  "LP",
		Length: length,
	}
}

func TestScrobbleAfterHalf(t *testing.T) {
	s := &fakeScrobbler{}
	f, h := newTestFrontend(t, s)

	h.SetPlaying(player.Playing, 1, song("/a", 3*time.Minute))
	f.OnEvent(events.TrackChange, 1)
	f.OnEvent(events.TrackInfoChange, 0)
	f.OnEvent(events.PlaybackTimeChange, 60_000)
	f.OnEvent(events.PlaybackTimeChange, 90_000)
	f.OnEvent(events.PlaybackTimeChange, 120_000)
	f.Shutdown()

	require.Len(t, s.nowPlaying, 1)
	require.Len(t, s.scrobbles, 1)
	assert.Equal(t, "Song /a", s.scrobbles[0].Track)
	assert.Equal(t, start, s.scrobbles[0].Timestamp)
	assert.Equal(t, 3*time.Minute, s.scrobbles[0].Duration)
}

func TestNoScrobbleForShortOrUntagged(t *testing.T) {
	s := &fakeScrobbler{}
	f, h := newTestFrontend(t, s)

	h.SetPlaying(player.Playing, 1, song("/short", 20*time.Second))
	f.OnEvent(events.TrackInfoChange, 0)
	f.OnEvent(events.PlaybackTimeChange, 19_000)

	h.SetPlaying(player.Playing, 2, trackinfo.Fields{Path: "/untagged", Length: time.Hour})
	f.OnEvent(events.TrackInfoChange, 0)
	f.OnEvent(events.PlaybackTimeChange, 3_600_000)
	f.Shutdown()

	assert.Len(t, s.nowPlaying, 1)
	assert.Empty(t, s.scrobbles)
}

func TestIgnoresWhenNotPlaying(t *testing.T) {
	s := &fakeScrobbler{}
	f, h := newTestFrontend(t, s)

	h.SetPlaying(player.Stopped, -1, song("/a", time.Minute))
	f.OnEvent(events.TrackChange, 1)
	f.OnEvent(events.PlaybackTimeChange, 50_000)
	f.Shutdown()

	assert.Empty(t, s.nowPlaying)
	assert.Empty(t, s.scrobbles)
}

func TestErrorsAreAbsorbed(t *testing.T) {
	s := &fakeScrobbler{err: errors.New("offline")}
	f, h := newTestFrontend(t, s)

	h.SetPlaying(player.Playing, 1, song("/a", time.Minute))
	f.OnEvent(events.TrackChange, 1)
	f.OnEvent(events.PlaybackTimeChange, 40_000)
	f.Shutdown()

	assert.Len(t, s.scrobbles, 1)
}

func TestInit_RequiresCredentials(t *testing.T) {
	h := frontendtest.New()
	fe := &Frontend{}
	assert.False(t, fe.Init(h))

	_ = h.SetConfig(config.KeyLastfmAPIKey, "key")
	_ = h.SetConfig(config.KeyLastfmAPISecret, "secret")
	_ = h.SetConfig(config.KeyLastfmSessionKey, "session")
	fe = &Frontend{}
	require.True(t, fe.Init(h))
	fe.Shutdown()
}

func TestEligible(t *testing.T) {
	tests := []struct {
		played, length time.Duration
		want           bool
	}{
		{10 * time.Second, 30 * time.Second, false},
		{30 * time.Second, 30 * time.Second, false},
		{20 * time.Second, 40 * time.Second, true},
		{19 * time.Second, 40 * time.Second, false},
		{4 * time.Minute, 20 * time.Minute, true},
		{3 * time.Minute, 20 * time.Minute, false},
		{4 * time.Minute, 0, true},
		{2 * time.Minute, 0, false},
	}
	for _, tt := range tests {
		if got := eligible(tt.played, tt.length); got != tt.want {
			t.Errorf("eligible(%v, %v) = %v, want %v", tt.played, tt.length, got, tt.want)
		}
	}
}

func TestParams(t *testing.T) {
	track := ScrobbleTrack{
		Artist:      "Band",
		Track:       "Song",
		Album:       "LP",
		AlbumArtist: "Band",
		TrackNumber: 3,
		Duration:    200 * time.Second,
		Timestamp:   start,
	}
	p := track.params(true)
	assert.Equal(t, "Band", p["artist"])
	assert.Equal(t, "Song", p["track"])
	assert.Equal(t, start.Unix(), p["timestamp"])
	assert.Equal(t, 200, p["duration"])
	assert.Equal(t, 3, p["trackNumber"])
	assert.NotContains(t, p, "albumArtist")

	p = track.params(false)
	assert.NotContains(t, p, "timestamp")
}

func TestClient_RequiresSession(t *testing.T) {
	c := NewClient("key", "secret")
	assert.False(t, c.IsAuthenticated())
	assert.ErrorIs(t, c.Scrobble(ScrobbleTrack{}), ErrNotAuthenticated)
	assert.ErrorIs(t, c.UpdateNowPlaying(ScrobbleTrack{}), ErrNotAuthenticated)
	assert.Contains(t, c.AuthURL("tok"), "api_key=key&token=tok")
}
