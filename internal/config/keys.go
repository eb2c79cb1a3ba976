package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Keys use koanf's dotted namespace.
const (
	KeyPlayMode          = "core.play_mode"
	KeyVolume            = "core.volume"
	KeyAutoPlay          = "core.auto_play"
	KeyRememberPlaylist  = "core.remember_playlist"
	KeyRememberPosition  = "core.remember_position"
	KeyShutdownAfterLast = "core.shutdown_after_last"
	KeyTickMS            = "core.tick_ms"
	KeyEventCapacity     = "core.event_capacity"
	KeyFadeOutMS         = "core.fade_out_ms"

	KeyFrontendsDir      = "frontends.dir"
	KeyFrontendsDisabled = "frontends.disabled"

	KeyLogFile       = "log.file"
	KeyEventLogFile  = "eventlog.file"
	KeySocketPath    = "socket.path"
	KeyNotifyEnabled = "notify.enabled"
	KeyNotifyTimeout = "notify.timeout_ms"

	KeyLastfmAPIKey     = "lastfm.api_key"
	KeyLastfmAPISecret  = "lastfm.api_secret"
	KeyLastfmSessionKey = "lastfm.session_key"

	KeyUIEnabled = "ui.enabled"
	KeyUITheme   = "ui.theme"
)

const appName = "waved"

// Defaults returns the values seeded into a fresh store. Paths that depend on
// the XDG base directories are resolved at call time.
func Defaults() map[string]any {
	return map[string]any{
		KeyPlayMode:          "continue",
		KeyVolume:            80,
		KeyAutoPlay:          false,
		KeyRememberPlaylist:  true,
		KeyRememberPosition:  true,
		KeyShutdownAfterLast: false,
		KeyTickMS:            250,
		KeyEventCapacity:     4096,
		KeyFadeOutMS:         0,

		KeyFrontendsDir:      filepath.Join(xdg.DataHome, appName, "frontends"),
		KeyFrontendsDisabled: []string{},

		KeyLogFile:       "",
		KeyEventLogFile:  "",
		KeySocketPath:    filepath.Join(xdg.RuntimeDir, appName, "waved.sock"),
		KeyNotifyEnabled: true,
		KeyNotifyTimeout: 5000,

		KeyLastfmAPIKey:     "",
		KeyLastfmAPISecret:  "",
		KeyLastfmSessionKey: "",

		KeyUIEnabled: true,
		KeyUITheme:   "default",
	}
}
