package playerbar

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// sanitize drops control characters from tag values, which would break
// the layout.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\u00a0':
			return ' '
		case r == unicode.ReplacementChar, unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}

// truncate shortens s to maxWidth cells with a single character ellipsis.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(sanitize(s), maxWidth, "…")
}

// pad fills s with spaces to exactly width cells.
func pad(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
