// Package cli implements the waved command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/waved/internal/logging"
)

// flags holds the values of the root command's flags.
type flags struct {
	configFile string
	configDir  string
	theme      string
	verbosity  int
	frontends  []string
	playlist   string
	logFile    string
	noState    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "waved [flags] [files...]",
		Short: "Extensible audio player",
		Long: `waved plays a playlist of audio files. Remote controls, notifications,
scrobbling, logging and the terminal UI are frontends loaded at startup.

Files given as arguments are appended to the playlist and the first one
is played.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f.verbosity < 0 || f.verbosity > logging.MaxVerbosity {
				return fmt.Errorf("verbosity must be between 0 and %d", logging.MaxVerbosity)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, args, cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/waved/config.toml)")
	pf.StringVarP(&f.configDir, "config-dir", "d", "", "directory holding config.toml")
	pf.IntVarP(&f.verbosity, "verbose", "v", 2, "verbosity from 0 (silent) to 5 (trace)")
	pf.StringVar(&f.logFile, "log-file", "", "write the log to this file")

	rf := root.Flags()
	rf.StringVarP(&f.theme, "theme", "t", "", "terminal UI theme")
	rf.StringArrayVarP(&f.frontends, "frontend", "f", nil, "load only this frontend (built-in id or bundle path, repeatable)")
	rf.StringVarP(&f.playlist, "playlist", "l", "", "load this M3U playlist instead of the saved session")
	rf.BoolVar(&f.noState, "no-state", false, "neither restore nor save the session")

	root.AddCommand(newVersionCmd(f), newLastfmAuthCmd(f))
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
