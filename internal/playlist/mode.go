package playlist

import (
	"fmt"
	"strings"
)

// PlayMode selects how the cursor advances.
type PlayMode int

const (
	Continue PlayMode = iota
	RepeatAll
	RepeatOne
	Random
	RandomRepeat
)

var modeNames = [...]string{
	Continue:     "continue",
	RepeatAll:    "repeat-all",
	RepeatOne:    "repeat-one",
	Random:       "random",
	RandomRepeat: "random-repeat",
}

func (m PlayMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("PlayMode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is a known mode.
func (m PlayMode) Valid() bool {
	return m >= Continue && m <= RandomRepeat
}

// ParseMode returns the mode named s. Case and the "_" separator are
// accepted.
func ParseMode(s string) (PlayMode, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for i, name := range modeNames {
		if name == norm {
			return PlayMode(i), nil
		}
	}
	return Continue, fmt.Errorf("unknown play mode %q", s)
}

// CycleMode returns the mode following m, wrapping around.
func CycleMode(m PlayMode) PlayMode {
	return (m + 1) % PlayMode(len(modeNames))
}

func (m PlayMode) random() bool { return m == Random || m == RandomRepeat }

func (m PlayMode) wraps() bool { return m == RepeatAll || m == RandomRepeat }
