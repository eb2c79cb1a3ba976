package playerbar

import (
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/frontend"
	"github.com/llehouerou/waved/internal/ui/styles"
)

// ID is the frontend identifier.
const ID = "ui"

// Frontend runs the bubbletea program on its own goroutine. Events only
// wake the program up; it reads the state through the host.
type Frontend struct {
	host frontend.Host
	log  zerolog.Logger
	opts []tea.ProgramOption

	program *tea.Program
	refresh chan struct{}
	wg      sync.WaitGroup
}

// New returns the terminal UI frontend. It only loads when stdin and
// stdout are terminals.
func New() frontend.Frontend { return &Frontend{} }

// NewWithOptions returns a frontend whose program is built with opts,
// without the terminal check.
func NewWithOptions(opts ...tea.ProgramOption) *Frontend {
	return &Frontend{opts: opts}
}

func (f *Frontend) ID() string   { return ID }
func (f *Frontend) Name() string { return "terminal player bar" }

// IsTerminal reports whether the UI can run on the process' standard
// streams.
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

func (f *Frontend) Init(h frontend.Host) bool {
	f.host = h
	f.log = h.Logger(ID)
	if !h.ConfigBool(config.KeyUIEnabled) {
		return false
	}
	if f.opts == nil && !IsTerminal() {
		f.log.Debug().Msg("not a terminal")
		return false
	}

	name := h.ConfigString(config.KeyUITheme)
	th, ok := styles.Lookup(name)
	if !ok {
		f.log.Warn().Str("theme", name).Strs("known", styles.Names()).Msg("unknown theme, using default")
		th = styles.Get(styles.DefaultTheme)
	}

	f.program = tea.NewProgram(NewModel(h, th), f.opts...)
	f.refresh = make(chan struct{}, 1)

	f.wg.Add(2)
	go f.run()
	go f.forward()
	return true
}

func (f *Frontend) run() {
	defer f.wg.Done()
	if _, err := f.program.Run(); err != nil {
		f.log.Error().Err(err).Msg("terminal UI stopped")
	}
}

// forward turns wake ups into refresh messages. Send blocks until the
// program reads the message, so it stays off the control goroutine.
func (f *Frontend) forward() {
	defer f.wg.Done()
	for range f.refresh {
		f.program.Send(refreshMsg{})
	}
}

// OnEvent coalesces events into a single pending refresh.
func (f *Frontend) OnEvent(kind events.Kind, param int) int {
	select {
	case f.refresh <- struct{}{}:
	default:
	}
	return 0
}

// Shutdown stops the program and restores the terminal.
func (f *Frontend) Shutdown() {
	close(f.refresh)
	f.program.Quit()
	f.wg.Wait()
}
