package playerbar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/waved/internal/player"
	"github.com/llehouerou/waved/internal/ui/styles"
)

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	stopSymbol  = "■"

	separator   = "   "
	minBarWidth = 10

	expandedRows = 6
)

// Renderer draws State with a theme.
type Renderer struct {
	theme *styles.Theme
	bar   progress.Model
}

// NewRenderer returns a renderer using th.
func NewRenderer(th *styles.Theme) Renderer {
	bar := progress.New(
		progress.WithSolidFill(string(th.Primary)),
		progress.WithoutPercentage(),
	)
	bar.Full = '━'
	bar.Empty = '─'
	bar.EmptyColor = string(th.FgSubtle)
	return Renderer{theme: th, bar: bar}
}

// Render returns the player bar for the given width.
func (r Renderer) Render(s State, mode DisplayMode, width int) string {
	if !s.Status.IsActive() {
		return r.renderStopped(s, width)
	}
	if mode == ModeExpanded && width >= 40 {
		return r.renderExpanded(s, width)
	}
	return r.renderCompact(s, width)
}

func symbol(st player.Status) string {
	switch st {
	case player.Playing:
		return playSymbol
	case player.Paused:
		return pauseSymbol
	default:
		return stopSymbol
	}
}

// settings is the right hand block: volume and play mode.
func (r Renderer) settings(s State) string {
	return r.theme.S().Accent.Render(fmt.Sprintf("vol %3d%%  %s", s.Volume, s.Mode))
}

func (r Renderer) progressBar(s State, width int) string {
	var ratio float64
	if s.Duration > 0 {
		ratio = min(float64(s.Elapsed)/float64(s.Duration), 1)
	}
	bar := r.bar
	bar.Width = width
	return bar.ViewAs(ratio)
}

func (r Renderer) renderStopped(s State, width int) string {
	st := r.theme.S()
	innerWidth := max(width-6, 0)

	msg := "stopped"
	if s.Entries > 0 {
		msg += " · " + humanize.Comma(int64(s.Entries)) + " " + plural(s.Entries, "track")
	} else {
		msg += " · empty playlist"
	}
	right := r.settings(s)
	left := truncate(stopSymbol+"  "+msg, innerWidth-lipgloss.Width(right)-1)
	content := row(st.Muted.Render(left), right, innerWidth)
	return st.Bar.Padding(0, 2).Width(max(width-2, 0)).Render(content)
}

func (r Renderer) renderCompact(s State, width int) string {
	st := r.theme.S()
	// Subtract border and padding
	innerWidth := max(width-6, 0)

	title := sanitize(s.Title)
	if title == "" {
		title = "Unknown Track"
	}

	// Artist · Album · Year
	var infoParts []string
	if s.Artist != "" {
		infoParts = append(infoParts, s.Artist)
	}
	if s.Album != "" {
		infoParts = append(infoParts, s.Album)
	}
	if s.Year > 0 {
		infoParts = append(infoParts, strconv.Itoa(s.Year))
	}
	info := sanitize(strings.Join(infoParts, " · "))

	var trackNum string
	if s.Position > 0 {
		trackNum = fmt.Sprintf("%d/%d", s.Position, s.Entries)
	}

	status := symbol(s.Status)
	timeStr := formatDuration(s.Elapsed) + " / " + formatDuration(s.Duration)
	settings := r.settings(s)

	sepWidth := lipgloss.Width(separator)
	fixed := lipgloss.Width(status+"  ") + lipgloss.Width(timeStr) + lipgloss.Width(settings) + sepWidth*3
	trackNumSpace := 0
	if trackNum != "" {
		trackNumSpace = lipgloss.Width(trackNum) + sepWidth
	}
	available := innerWidth - fixed - minBarWidth - trackNumSpace

	titleWidth := lipgloss.Width(title)
	infoWidth := lipgloss.Width(info)

	var styledTitle, styledInfo string
	var used int
	switch {
	case info != "" && titleWidth+sepWidth+infoWidth <= available:
		styledTitle = st.Title.Render(title)
		styledInfo = st.Muted.Render(info)
		used = titleWidth + sepWidth + infoWidth
	case info != "" && titleWidth+sepWidth+1 < available:
		// Truncate info
		i := truncate(info, available-titleWidth-sepWidth)
		styledTitle = st.Title.Render(title)
		styledInfo = st.Muted.Render(i)
		used = titleWidth + sepWidth + lipgloss.Width(i)
	default:
		// Truncate title, no info
		t := truncate(title, max(available, 10))
		styledTitle = st.Title.Render(t)
		used = lipgloss.Width(t)
	}

	barWidth := max(innerWidth-used-trackNumSpace-fixed, 5)

	// Title   Artist · Album   3/12   ▶  ━━━───   1:23 / 3:58   vol  80%  continue
	var b strings.Builder
	b.WriteString(styledTitle)
	if styledInfo != "" {
		b.WriteString(separator)
		b.WriteString(styledInfo)
	}
	if trackNum != "" {
		b.WriteString(separator)
		b.WriteString(st.Subtle.Render(trackNum))
	}
	b.WriteString(separator)
	b.WriteString(st.Playing.Render(status))
	b.WriteString("  ")
	b.WriteString(r.progressBar(s, barWidth))
	b.WriteString(separator)
	b.WriteString(st.Base.Render(timeStr))
	b.WriteString(separator)
	b.WriteString(settings)

	return st.Bar.Padding(0, 2).Width(max(width-2, 0)).Render(b.String())
}

func (r Renderer) renderExpanded(s State, width int) string {
	st := r.theme.S()
	innerWidth := max(width-6, 0)

	artist := s.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}
	album := s.Album
	if album == "" {
		album = "Unknown Album"
	}
	if s.Year > 0 {
		album = fmt.Sprintf("%s (%d)", album, s.Year)
	}
	title := s.Title
	if s.TrackNumber > 0 {
		title = fmt.Sprintf("%02d - %s", s.TrackNumber, s.Title)
	}

	var details []string
	if s.Genre != "" {
		details = append(details, s.Genre)
	}
	if f := formatAudioInfo(s.Format, s.SampleRate, s.Bitrate); f != "" {
		details = append(details, f)
	}

	var position string
	if s.Position > 0 {
		position = fmt.Sprintf("track %d of %d", s.Position, s.Entries)
	} else {
		position = "not in playlist"
	}

	// ▶  1:23  ━━━━───  4:56
	head := symbol(s.Status) + "  " + formatDuration(s.Elapsed) + "  "
	tail := "  " + formatDuration(s.Duration)
	barWidth := max(innerWidth-lipgloss.Width(head)-lipgloss.Width(tail), 3)

	lines := []string{
		st.Title.Render(truncate(title, innerWidth)),
		st.Base.Render(truncate(artist, innerWidth)),
		st.Muted.Render(truncate(album, innerWidth)),
		st.Subtle.Render(truncate(strings.Join(details, " · "), innerWidth)),
		st.Playing.Render(head) + r.progressBar(s, barWidth) + st.Base.Render(tail),
		row(st.Subtle.Render(position), r.settings(s), innerWidth),
	}
	return st.Bar.Padding(0, 2).Width(max(width-2, 0)).Render(strings.Join(lines, "\n"))
}

// row aligns left and right on one line of the given width.
func row(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func formatAudioInfo(format string, sampleRate, bitrate int) string {
	var parts []string
	if format != "" {
		parts = append(parts, format)
	}
	if sampleRate > 0 {
		parts = append(parts, humanize.SIWithDigits(float64(sampleRate), 1, "Hz"))
	}
	if bitrate > 0 {
		parts = append(parts, humanize.SIWithDigits(float64(bitrate)*1000, 0, "bit/s"))
	}
	return strings.Join(parts, " · ")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
