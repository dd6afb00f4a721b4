//go:build !tinygo

package main

import (
	"os"
	"time"

	"rtk/app"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	traceOpts  simOpts
	traceWidth int

	traceCmd = &cobra.Command{
		Use:   "trace",
		Short: "Print an ASCII timing diagram of the thread lanes and PB1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := traceOpts.simulate(cmd.Context())
			if err != nil {
				return err
			}
			return app.RenderTrace(cmd.OutOrStdout(), sys.Lanes().Snapshot(), sys.ThreadNames(), width())
		},
	}
)

func init() {
	traceOpts.register(traceCmd, 200*time.Millisecond)
	traceCmd.Flags().IntVarP(&traceWidth, "width", "w", 0, "diagram width (default: terminal width or 80)")
}

func width() int {
	if traceWidth > 0 {
		return traceWidth
	}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return 80
}
