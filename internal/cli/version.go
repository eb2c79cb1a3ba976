package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func newVersionCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "waved %s\n", Version)
			if f.verbosity >= 3 {
				fmt.Fprintf(out, "  commit:     %s\n", Commit)
				fmt.Fprintf(out, "  built:      %s\n", BuildDate)
				fmt.Fprintf(out, "  go version: %s\n", runtime.Version())
				fmt.Fprintf(out, "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
