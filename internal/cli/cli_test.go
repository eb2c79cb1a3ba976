package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/core"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewReader(nil))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "waved dev\n", out)

	out, err = execute(t, "-v", "3", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "go version:")
}

func TestVerbosityRange(t *testing.T) {
	_, err := execute(t, "-v", "6", "version")
	assert.Error(t, err)
	_, err = execute(t, "--verbose=-1", "version")
	assert.Error(t, err)
}

func TestLastfmAuth_RequiresAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[lastfm]\napi_key = \"k\"\n"), 0o600))

	_, err := execute(t, "-c", path, "lastfm-auth")
	assert.ErrorIs(t, err, errNoAPIKey)
}

func TestOptions(t *testing.T) {
	f := &flags{
		configDir: "/etc/waved",
		theme:     "mono",
		frontends: []string{"socket"},
		playlist:  "list.m3u",
	}
	opts := f.options([]string{"a.mp3"})
	assert.Equal(t, "/etc/waved", opts.ConfigDir)
	assert.Equal(t, "mono", opts.Theme)
	assert.Equal(t, []string{"socket"}, opts.Frontends)
	assert.Equal(t, "list.m3u", opts.PlaylistPath)
	assert.Equal(t, []string{"a.mp3"}, opts.Files)
	assert.Empty(t, opts.StatePath)

	f.noState = true
	assert.Equal(t, core.NoState, f.options(nil).StatePath)
}

func newConfig(t *testing.T, values map[string]any) *config.Store {
	t.Helper()
	cfg := config.New(zerolog.Nop(), config.Defaults())
	for k, v := range values {
		require.NoError(t, cfg.Set(k, v))
	}
	return cfg
}

func TestWantsUI(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]any
		explicit []string
		terminal bool
		want     bool
	}{
		{"terminal", nil, nil, true, true},
		{"no terminal", nil, nil, false, false},
		{"disabled", map[string]any{config.KeyUIEnabled: false}, nil, true, false},
		{"filtered", map[string]any{config.KeyFrontendsDisabled: []string{"ui"}}, nil, true, false},
		{"explicit without ui", nil, []string{"socket"}, true, false},
		{"explicit with ui", nil, []string{"socket", "ui"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(t, tt.values)
			if got := wantsUI(cfg, tt.explicit, tt.terminal); got != tt.want {
				t.Errorf("wantsUI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogPath(t *testing.T) {
	cfg := newConfig(t, nil)
	assert.Empty(t, logPath(&flags{}, cfg, false))
	assert.Equal(t, "waved.log", filepath.Base(logPath(&flags{}, cfg, true)))

	require.NoError(t, cfg.Set(config.KeyLogFile, "/var/log/waved.log"))
	assert.Equal(t, "/var/log/waved.log", logPath(&flags{}, cfg, true))
	assert.Equal(t, "/tmp/x.log", logPath(&flags{logFile: "/tmp/x.log"}, cfg, false))
}
