//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/playlist"
	"github.com/llehouerou/waved/internal/trackinfo"
)

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct {
	host frontend.Host
}

func (r *rootAdapter) Raise() error { return nil }

func (r *rootAdapter) Quit() error {
	r.host.RequestQuit()
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error)      { return true, nil }
func (r *rootAdapter) CanRaise() (bool, error)     { return false, nil }
func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }
func (r *rootAdapter) Identity() (string, error)   { return "waved", nil }

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav", "audio/x-wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter. Every call
// becomes a queued command; the reads go through the host accessors.
type playerAdapter struct {
	host frontend.Host
}

func (p *playerAdapter) command(kind playback.CommandKind) error {
	p.host.Command(playback.Command{Kind: kind})
	return nil
}

func (p *playerAdapter) Next() error     { return p.command(playback.CmdNext) }
func (p *playerAdapter) Previous() error { return p.command(playback.CmdPrevious) }
func (p *playerAdapter) Stop() error     { return p.command(playback.CmdStop) }
func (p *playerAdapter) Play() error     { return p.command(playback.CmdPlay) }

func (p *playerAdapter) Pause() error {
	if p.host.Status() != player.Playing {
		return nil
	}
	return p.command(playback.CmdPause)
}

func (p *playerAdapter) PlayPause() error {
	if p.host.Status().IsActive() {
		return p.command(playback.CmdPause)
	}
	return p.command(playback.CmdPlay)
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.host.Command(playback.Command{Kind: playback.CmdSeek, Int: int(offset / 1_000_000)})
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	delta := int64(position)/1000 - p.host.ElapsedMS()
	p.host.Command(playback.Command{Kind: playback.CmdSeek, Int: int(delta / 1000)})
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	path, err := uriPath(uri)
	if err != nil {
		return err
	}
	p.host.Command(playback.Command{Kind: playback.CmdPlayFile, Str: path})
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.host.Status() {
	case player.Playing:
		return types.PlaybackStatusPlaying, nil
	case player.Paused:
		return types.PlaybackStatusPaused, nil
	case player.Stopped, player.Finished:
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error)        { return 1.0, nil }
func (p *playerAdapter) SetRate(float64) error         { return nil }
func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }
func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	if !p.host.Status().IsActive() {
		return types.Metadata{}, nil
	}
	return metadata(p.host.TrackInfo()), nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return float64(p.host.Volume()) / 100, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.host.Command(playback.Command{Kind: playback.CmdVolume, Int: int(v*100 + 0.5)})
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.host.ElapsedMS() * 1000, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	pos := p.host.Position()
	n := p.host.PlaylistLen()
	return n > 0 && (pos < n || wraps(p.host.PlayMode())), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.host.Position() > 1 || wraps(p.host.PlayMode()), nil
}

func (p *playerAdapter) CanPlay() (bool, error)    { return p.host.PlaylistLen() > 0, nil }
func (p *playerAdapter) CanPause() (bool, error)   { return true, nil }
func (p *playerAdapter) CanSeek() (bool, error)    { return true, nil }
func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	return loopStatus(p.host.PlayMode()), nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	mode := modeFor(status, shuffled(p.host.PlayMode()))
	p.host.Command(playback.Command{Kind: playback.CmdPlayMode, Int: int(mode)})
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return shuffled(p.host.PlayMode()), nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	mode := modeFor(loopStatus(p.host.PlayMode()), shuffle)
	p.host.Command(playback.Command{Kind: playback.CmdPlayMode, Int: int(mode)})
	return nil
}

func metadata(f trackinfo.Fields) types.Metadata {
	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(f.Path)),
		Length:      types.Microseconds(f.Length.Microseconds()),
		Title:       f.DisplayTitle(),
		Album:       f.Album,
		TrackNumber: f.TrackNumber,
	}
	if f.Artist != "" {
		meta.Artist = []string{f.Artist}
	}
	if art := trackinfo.FindCoverFile(f.Path); art != "" {
		meta.ArtUrl = "file://" + art
	}
	return meta
}

func loopStatus(m playlist.PlayMode) types.LoopStatus {
	switch m {
	case playlist.RepeatOne:
		return types.LoopStatusTrack
	case playlist.RepeatAll, playlist.RandomRepeat:
		return types.LoopStatusPlaylist
	case playlist.Continue, playlist.Random:
	}
	return types.LoopStatusNone
}

func shuffled(m playlist.PlayMode) bool {
	return m == playlist.Random || m == playlist.RandomRepeat
}

func wraps(m playlist.PlayMode) bool {
	return m == playlist.RepeatAll || m == playlist.RandomRepeat
}

// modeFor combines the two MPRIS settings into a play mode. Shuffle with
// single-track repeat has no play mode of its own; it repeats the list.
func modeFor(loop types.LoopStatus, shuffle bool) playlist.PlayMode {
	switch {
	case shuffle && loop != types.LoopStatusNone:
		return playlist.RandomRepeat
	case shuffle:
		return playlist.Random
	case loop == types.LoopStatusTrack:
		return playlist.RepeatOne
	case loop == types.LoopStatusPlaylist:
		return playlist.RepeatAll
	}
	return playlist.Continue
}

func uriPath(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
	return u.Path, nil
}

func formatTrackID(path string) string {
	if path == "" {
		return "/org/mpris/MediaPlayer2/TrackList/NoTrack"
	}
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
