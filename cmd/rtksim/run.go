//go:build !tinygo

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	runOpts simOpts

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the demo headless and print thread statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := runOpts.simulate(cmd.Context())
			if err != nil {
				return err
			}
			k := sys.Kernel()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ticks %d, ms %d\n", k.Ticks(), k.MsTime())
			for _, t := range k.Threads() {
				fmt.Fprintf(out, "  %-8s slices %d\n", t.Name, t.Slices)
			}
			st := sys.Stats()
			fmt.Fprintf(out, "batches %d, handshakes %d, idle loops %d\n", st.Batches, st.Handshakes, st.IdleLoops)
			return nil
		},
	}
)

func init() {
	runOpts.register(runCmd, 0)
}
