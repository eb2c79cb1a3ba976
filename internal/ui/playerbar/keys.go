package playerbar

import "github.com/charmbracelet/bubbles/key"

const (
	seekStep   = 10 // seconds
	volumeStep = 5  // percent
)

type keyMap struct {
	Pause      key.Binding
	Stop       key.Binding
	Next       key.Binding
	Prev       key.Binding
	SeekFwd    key.Binding
	SeekBack   key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Mode       key.Binding
	Expand     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Pause:      key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
		Stop:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Next:       key.NewBinding(key.WithKeys("n", "l"), key.WithHelp("n", "next")),
		Prev:       key.NewBinding(key.WithKeys("b", "h"), key.WithHelp("b", "previous")),
		SeekFwd:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+10s")),
		SeekBack:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-10s")),
		VolumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolumeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		Mode:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "play mode")),
		Expand:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "details")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Next, k.Prev, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Stop, k.Next, k.Prev},
		{k.SeekFwd, k.SeekBack, k.VolumeUp, k.VolumeDown},
		{k.Mode, k.Expand, k.Help, k.Quit},
	}
}
