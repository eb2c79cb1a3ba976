package eventlog

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
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

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		out = append(out, rec)
	}
	return out
}

func messages(recs []map[string]any) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r["message"].(string))
	}
	return out
}

func TestTracksAndSummary(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := frontendtest.New()
	f := NewWithWriter(&buf, func() time.Time { return now })
	require.True(t, f.Init(h))

	h.SetPlaying(player.Playing, 1, trackinfo.Fields{
		Path:       "/music/a.flac",
		Title:      "A",
		Artist:     "Band",
		Length:     3*time.Minute + 400*time.Millisecond,
		FileType:   "FLAC",
		SampleRate: 44100,
		Bitrate:    1100,
	})
	f.OnEvent(events.TrackChange, 1)
	f.OnEvent(events.PlaybackStateChange, int(player.Playing))
	f.OnEvent(events.TrackInfoChange, 0)
	f.OnEvent(events.PlaybackTimeChange, 60_000)

	h.SetPlaying(player.Playing, 2, trackinfo.Fields{Path: "/music/b.mp3"})
	f.OnEvent(events.TrackChange, 2)
	f.OnEvent(events.PlaybackTimeChange, 30_000)
	f.Shutdown()

	recs := records(t, &buf)
	assert.Equal(t, []string{
		"session start",
		"track", "event",
		"event",
		"event",
		"track", "event",
		"session end",
	}, messages(recs))

	first := recs[1]
	assert.Equal(t, "/music/a.flac", first["path"])
	assert.Equal(t, "A", first["title"])
	assert.Equal(t, "3m0s", first["length"])
	assert.Equal(t, "FLAC 44.1 kHz 1.1 Mbit/s", first["quality"])

	assert.Equal(t, "Playing", recs[3]["status"])
	assert.Equal(t, "b.mp3", recs[5]["title"])
	assert.Equal(t, "unknown", recs[5]["length"])

	end := recs[len(recs)-1]
	assert.InDelta(t, 2, end["tracks"], 0)
	assert.Equal(t, "1m30s", end["listened"])
	assert.Equal(t, "now", end["since"])
}

func TestIgnoresTracksWhenStopped(t *testing.T) {
	var buf bytes.Buffer
	h := frontendtest.New()
	f := NewWithWriter(&buf, time.Now)
	require.True(t, f.Init(h))

	h.SetPlaying(player.Stopped, -1, trackinfo.Fields{Path: "/music/a.flac"})
	f.OnEvent(events.TrackInfoChange, 0)
	f.Shutdown()

	assert.Equal(t, []string{"session start", "event", "session end"}, messages(records(t, &buf)))
}

func TestInit_File(t *testing.T) {
	h := frontendtest.New()
	assert.False(t, (&Frontend{}).Init(h))

	path := filepath.Join(t.TempDir(), "logs", "events.jsonl")
	require.NoError(t, h.SetConfig(config.KeyEventLogFile, path))
	f := &Frontend{}
	require.True(t, f.Init(h))
	f.Shutdown()
	assert.FileExists(t, path)
}
