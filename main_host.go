//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"rtk/app"
	"rtk/hal"
	"rtk/kernel"
)

func main() {
	var cfg hal.HeadlessConfig
	acfg := app.DefaultConfig()
	var yield bool
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Frame rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N frames in headless mode (0 = run forever).")
	flag.IntVar(&acfg.SliceMs, "slice", acfg.SliceMs, "Thread switch period in ms.")
	flag.BoolVar(&yield, "yield", false, "Blocked waits give up the rest of the time slice.")
	flag.Parse()

	if yield {
		acfg.WaitPolicy = kernel.WaitYield
	}
	newApp := func(h hal.HAL) (hal.App, error) {
		return app.New(h, acfg)
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, cfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp, hal.Options{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
