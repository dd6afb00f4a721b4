//go:build !tinygo

// Command rtksim runs the demo system on the host board without a window and
// reports what the kernel did.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "rtksim",
	Short:         "Run the rtk demo on the simulated board",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd, traceCmd, profileCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rtksim:", err)
		os.Exit(1)
	}
}
