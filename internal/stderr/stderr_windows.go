//go:build windows

// Package stderr is a no-op on Windows, whose audio stack does not write
// to the console.
package stderr

import (
	"os"

	"github.com/rs/zerolog"
)

// Capture is a no-op.
type Capture struct{}

// Start does nothing on Windows.
func Start(zerolog.Logger) (*Capture, error) {
	return &Capture{}, nil
}

// WriteOriginal writes to stderr.
func (*Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop does nothing on Windows.
func (*Capture) Stop() {}
