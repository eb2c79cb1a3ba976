package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/llehouerou/waved/internal/builtin"
	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/core"
	"github.com/llehouerou/waved/internal/logging"
	"github.com/llehouerou/waved/internal/stderr"
	"github.com/llehouerou/waved/internal/ui/playerbar"
)

func (f *flags) options(files []string) core.Options {
	opts := core.Options{
		ConfigPath:   f.configFile,
		ConfigDir:    f.configDir,
		Theme:        f.theme,
		Frontends:    f.frontends,
		PlaylistPath: f.playlist,
		Files:        files,
	}
	if f.noState {
		opts.StatePath = core.NoState
	}
	return opts
}

// preload reads the config file before the core exists, for the settings
// needed to set up logging. Errors are reported again by the core.
func preload(opts core.Options) *config.Store {
	cfg := config.New(zerolog.Nop(), config.Defaults())
	_ = cfg.Load(core.ConfigPath(opts))
	return cfg
}

// wantsUI reports whether the terminal frontend is going to load, in which
// case nothing else may write to the terminal.
func wantsUI(cfg *config.Store, explicit []string, terminal bool) bool {
	if !terminal || !cfg.Bool(config.KeyUIEnabled) {
		return false
	}
	if len(explicit) > 0 {
		return slices.Contains(explicit, playerbar.ID)
	}
	return !slices.Contains(cfg.Strings(config.KeyFrontendsDisabled), playerbar.ID)
}

func logPath(f *flags, cfg *config.Store, ui bool) string {
	if f.logFile != "" {
		return config.ExpandPath(f.logFile)
	}
	if p := cfg.String(config.KeyLogFile); p != "" {
		return config.ExpandPath(p)
	}
	if ui {
		return filepath.Join(xdg.StateHome, "waved", "waved.log")
	}
	return ""
}

func run(ctx context.Context, f *flags, files []string, errOut io.Writer) error {
	opts := f.options(files)
	pre := preload(opts)
	ui := wantsUI(pre, f.frontends, playerbar.IsTerminal())

	w := errOut
	if path := logPath(f, pre, ui); path != "" {
		file, err := logging.OpenFile(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	log := logging.New(f.verbosity, w)

	if ui {
		capture, err := stderr.Start(logging.Component(log, "stderr"))
		if err != nil {
			log.Warn().Err(err).Msg("stderr capture unavailable")
		} else {
			defer capture.Stop()
		}
	}

	opts.Log = log
	opts.Static = builtin.Loader()
	c, err := core.New(opts)
	if err != nil {
		return err
	}

	n := c.LoadFrontends()
	log.Info().Int("frontends", n).Msg("frontends loaded")

	if err := c.Restore(ctx); err != nil {
		return errors.Join(err, c.Close())
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := c.Run(ctx)
	return errors.Join(runErr, c.Close())
}
