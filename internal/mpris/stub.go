//go:build !linux

// Package mpris is a frontend exposing the player as an MPRIS2 media
// player. MPRIS only exists on Linux desktops; elsewhere the frontend
// declines to start.
package mpris

import "github.com/llehouerou/waved/internal/frontend"

// ID is the frontend identifier.
const ID = "mpris"

// Frontend is a no-op on non-Linux platforms.
type Frontend struct{}

// New returns the MPRIS frontend.
func New() frontend.Frontend { return &Frontend{} }

func (f *Frontend) ID() string   { return ID }
func (f *Frontend) Name() string { return "MPRIS remote control" }

// Init always fails: there is no session bus to serve on.
func (f *Frontend) Init(frontend.Host) bool { return false }
