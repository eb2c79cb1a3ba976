package socket

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/llehouerou/waved/internal/playback"
	"github.com/llehouerou/waved/internal/playlist"
)

const replyOK = "OK"

func replyErr(format string, args ...any) string {
	return "ERR " + fmt.Sprintf(format, args...)
}

// handle runs one request line and returns the reply. Verbs are case
// insensitive. Path arguments run to the end of the line so they may
// contain spaces.
func (f *Frontend) handle(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	verb, arg, _ := strings.Cut(line, " ")
	verb = strings.ToUpper(verb)
	arg = strings.TrimSpace(arg)

	switch verb {
	case "PLAY":
		return f.command(playback.Command{Kind: playback.CmdPlay})
	case "PAUSE":
		return f.command(playback.Command{Kind: playback.CmdPause})
	case "STOP":
		return f.command(playback.Command{Kind: playback.CmdStop})
	case "NEXT":
		return f.command(playback.Command{Kind: playback.CmdNext})
	case "PREV":
		return f.command(playback.Command{Kind: playback.CmdPrevious})
	case "PLAYITEM":
		// Positions are 1-based, like TRACK_CHANGE.
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > f.host.PlaylistLen() {
			return replyErr("bad position %q", arg)
		}
		return f.command(playback.Command{Kind: playback.CmdPlayItem, Int: n - 1})
	case "PLAYFILE":
		if arg == "" {
			return replyErr("missing path")
		}
		return f.command(playback.Command{Kind: playback.CmdPlayFile, Str: arg})
	case "SEEK":
		secs, err := strconv.Atoi(arg)
		if err != nil {
			return replyErr("bad offset %q", arg)
		}
		return f.command(playback.Command{Kind: playback.CmdSeek, Int: secs})
	case "VOLUME":
		v, err := strconv.Atoi(arg)
		if err != nil || v < 0 || v > 100 {
			return replyErr("bad volume %q", arg)
		}
		return f.command(playback.Command{Kind: playback.CmdVolume, Int: v})
	case "MODE":
		m, err := playlist.ParseMode(arg)
		if err != nil {
			return replyErr("%v", err)
		}
		return f.command(playback.Command{Kind: playback.CmdPlayMode, Int: int(m)})
	case "ADD":
		if arg == "" {
			return replyErr("missing path")
		}
		pos := f.host.AddFiles(arg)
		return fmt.Sprintf("%s %d", replyOK, pos+1)
	case "STATUS":
		return f.status()
	case "QUIT":
		f.host.RequestQuit()
		return replyOK
	default:
		return replyErr("unknown command %q", verb)
	}
}

func (f *Frontend) command(cmd playback.Command) string {
	if !f.host.Command(cmd) {
		return replyErr("command rejected")
	}
	return replyOK
}

// status formats the player state as key=value pairs. The path comes last
// and is not quoted.
func (f *Frontend) status() string {
	info := f.host.TrackInfo()
	return fmt.Sprintf("STATUS state=%s position=%d length=%d elapsed_ms=%d volume=%d mode=%s path=%s",
		strings.ToLower(f.host.Status().String()),
		f.host.Position(),
		f.host.PlaylistLen(),
		f.host.ElapsedMS(),
		f.host.Volume(),
		f.host.PlayMode(),
		info.Path,
	)
}
