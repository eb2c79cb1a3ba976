//go:build !windows

// Package stderr captures output that C libraries (ALSA and friends) write
// straight to file descriptor 2, so it cannot corrupt a terminal frontend.
// Captured lines are forwarded to a logger.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// Capture owns the redirected descriptor 2.
type Capture struct {
	orig int
	r, w *os.File
	done chan struct{}
	once sync.Once
}

// Start redirects descriptor 2 to a pipe whose lines are logged at warn
// level. log must not itself write to descriptor 2.
func Start(log zerolog.Logger) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := unix.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, r: r, w: w, done: make(chan struct{})}
	log = log.With().Str("component", "stderr").Logger()

	go func() {
		defer close(c.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				log.Warn().Msg(line)
			}
		}
	}()

	return c, nil
}

// WriteOriginal writes to the terminal's stderr, bypassing the capture.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = unix.Write(c.orig, []byte(msg))
}

// Stop restores descriptor 2 and waits for the buffered lines to be logged.
func (c *Capture) Stop() {
	c.once.Do(func() {
		_ = unix.Dup2(c.orig, int(os.Stderr.Fd()))
		_ = unix.Close(c.orig)
		c.w.Close()
		<-c.done
		c.r.Close()
	})
}
