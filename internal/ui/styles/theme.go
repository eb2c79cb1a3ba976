// Package styles holds the color themes of the terminal UI.
package styles

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultTheme is used when no theme, or an unknown one, is configured.
const DefaultTheme = "default"

// Theme defines the color palette and pre-built styles.
type Theme struct {
	Name string

	Primary   lipgloss.Color // progress, playing indicator
	Secondary lipgloss.Color // play mode and volume

	// Text hierarchy (most to least prominent)
	FgBase   lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color

	Border lipgloss.Color
	Error  lipgloss.Color

	styles *Styles
}

// Styles contains pre-built lipgloss styles.
type Styles struct {
	Base    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Title   lipgloss.Style
	Playing lipgloss.Style
	Accent  lipgloss.Style
	Error   lipgloss.Style
	Bar     lipgloss.Style // bordered box around the player bar
}

var themes = map[string]*Theme{
	"default": {
		Primary:   lipgloss.Color("#a78bfa"),
		Secondary: lipgloss.Color("#f1a208"),
		FgBase:    lipgloss.Color("#c0c0c0"),
		FgMuted:   lipgloss.Color("#808080"),
		FgSubtle:  lipgloss.Color("#585858"),
		Border:    lipgloss.Color("#585858"),
		Error:     lipgloss.Color("#ff5555"),
	},
	"light": {
		Primary:   lipgloss.Color("#6d28d9"),
		Secondary: lipgloss.Color("#b45309"),
		FgBase:    lipgloss.Color("#1f1f1f"),
		FgMuted:   lipgloss.Color("#4b4b4b"),
		FgSubtle:  lipgloss.Color("#8a8a8a"),
		Border:    lipgloss.Color("#a0a0a0"),
		Error:     lipgloss.Color("#c81e1e"),
	},
	"mono": {
		Primary:   lipgloss.Color("15"),
		Secondary: lipgloss.Color("7"),
		FgBase:    lipgloss.Color("15"),
		FgMuted:   lipgloss.Color("7"),
		FgSubtle:  lipgloss.Color("8"),
		Border:    lipgloss.Color("8"),
		Error:     lipgloss.Color("15"),
	},
}

func init() {
	for name, t := range themes {
		t.Name = name
	}
}

// Names returns the known theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the theme called name. Case is ignored.
func Lookup(name string) (*Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Get returns the named theme, falling back to the default one.
func Get(name string) *Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return themes[DefaultTheme]
}

// S returns the pre-built styles for this theme.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)

	return &Styles{
		Base:   base,
		Muted:  lipgloss.NewStyle().Foreground(t.FgMuted),
		Subtle: lipgloss.NewStyle().Foreground(t.FgSubtle),
		Title:  base.Bold(true),
		Playing: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),
		Accent: lipgloss.NewStyle().Foreground(t.Secondary),
		Error:  lipgloss.NewStyle().Foreground(t.Error),
		Bar: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),
	}
}
