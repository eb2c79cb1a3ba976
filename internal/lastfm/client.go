// Package lastfm is a frontend scrobbling played tracks to Last.fm.
package lastfm

import (
	"errors"
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned when an operation requires authentication.
var ErrNotAuthenticated = errors.New("not authenticated")

// Scrobbler submits plays. Client implements it.
type Scrobbler interface {
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

// Client wraps the Last.fm API for scrobbling operations.
type Client struct {
	api        *lastfm.Api
	apiKey     string
	sessionKey string
}

var _ Scrobbler = (*Client)(nil)

// NewClient creates a Last.fm client with the given API credentials.
func NewClient(apiKey, apiSecret string) *Client {
	return &Client{
		api:    lastfm.New(apiKey, apiSecret),
		apiKey: apiKey,
	}
}

// SetSessionKey sets the authenticated session key.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
	c.api.SetSession(key)
}

// IsAuthenticated returns true if a session key is set.
func (c *Client) IsAuthenticated() bool {
	return c.sessionKey != ""
}

// GetToken requests an authentication token from Last.fm.
func (c *Client) GetToken() (string, error) {
	result, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return result, nil
}

// AuthURL returns the page where the user authorizes token (desktop auth
// flow).
func (c *Client) AuthURL(token string) string {
	return fmt.Sprintf("https://www.last.fm/api/auth/?api_key=%s&token=%s", c.apiKey, token)
}

// GetSession exchanges an authorized token for a session key.
func (c *Client) GetSession(token string) (string, error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	c.sessionKey = c.api.GetSessionKey()
	return c.sessionKey, nil
}

// UpdateNowPlaying sends a "now playing" notification to Last.fm.
func (c *Client) UpdateNowPlaying(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.UpdateNowPlaying(track.params(false)); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

// Scrobble submits a track play to Last.fm.
func (c *Client) Scrobble(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.Scrobble(track.params(true)); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

func (t ScrobbleTrack) params(withTimestamp bool) lastfm.P {
	params := lastfm.P{
		"artist": t.Artist,
		"track":  t.Track,
	}
	if withTimestamp {
		params["timestamp"] = t.Timestamp.Unix()
	}
	if t.Album != "" {
		params["album"] = t.Album
	}
	if t.AlbumArtist != "" && t.AlbumArtist != t.Artist {
		params["albumArtist"] = t.AlbumArtist
	}
	if t.Duration > 0 {
		params["duration"] = int(t.Duration.Seconds())
	}
	if t.TrackNumber > 0 {
		params["trackNumber"] = t.TrackNumber
	}
	return params
}
