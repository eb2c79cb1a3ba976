package playback

import (
	"fmt"
	"sync"
)

// CommandKind selects the transition a Command requests.
type CommandKind int

const (
	NoCmd CommandKind = iota
	CmdPlay
	CmdPause
	CmdStop
	CmdNext
	CmdPrevious
	CmdPlayItem // Int: 0-based playlist index
	CmdPlayFile // Str: file path
	CmdSeek     // Int: relative seconds
	CmdVolume   // Int: percent
	CmdPlayMode // Int: playlist.PlayMode
)

func (k CommandKind) String() string {
	switch k {
	case NoCmd:
		return "none"
	case CmdPlay:
		return "play"
	case CmdPause:
		return "pause"
	case CmdStop:
		return "stop"
	case CmdNext:
		return "next"
	case CmdPrevious:
		return "previous"
	case CmdPlayItem:
		return "play-item"
	case CmdPlayFile:
		return "play-file"
	case CmdSeek:
		return "seek"
	case CmdVolume:
		return "volume"
	case CmdPlayMode:
		return "play-mode"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is a playback request from any goroutine.
type Command struct {
	Kind CommandKind
	Int  int
	Str  string
}

// slot holds at most one pending command. A newer request replaces an
// older one that has not been consumed yet.
type slot struct {
	mu      sync.Mutex
	cmd     Command
	pending bool
}

// set stores cmd and reports whether it replaced a pending command.
func (s *slot) set(cmd Command) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := s.pending
	s.cmd = cmd
	s.pending = true
	return replaced
}

// take removes and returns the pending command.
func (s *slot) take() (Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return Command{}, false
	}
	cmd := s.cmd
	s.cmd = Command{}
	s.pending = false
	return cmd, true
}

func (s *slot) has() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
