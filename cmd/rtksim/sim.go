//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"rtk/app"
	"rtk/hal"
	"rtk/kernel"

	"github.com/spf13/cobra"
)

// simOpts are the flags shared by every command that runs the demo.
type simOpts struct {
	slice    int
	sampleMs int
	prio     int
	batch    int
	yield    bool
	duration time.Duration
	hz       int
}

func (o *simOpts) register(cmd *cobra.Command, duration time.Duration) {
	def := app.DefaultConfig()
	f := cmd.Flags()
	f.IntVarP(&o.slice, "slice", "s", def.SliceMs, "thread switch period in ms")
	f.IntVar(&o.sampleMs, "period", def.SamplePeriodMs, "periodic sampler period in ms")
	f.IntVar(&o.prio, "priority", def.SamplePriority, "periodic sampler interrupt priority")
	f.IntVar(&o.batch, "batch", def.BatchEvery, "samples per batch handed to the consumer")
	f.BoolVar(&o.yield, "yield", false, "blocked waits give up the rest of the time slice")
	f.DurationVarP(&o.duration, "duration", "d", duration, "how long to run (0 = until interrupted)")
	f.IntVar(&o.hz, "hz", 30, "frame rate of the headless renderer")
}

func (o *simOpts) config() app.Config {
	cfg := app.DefaultConfig()
	cfg.SliceMs = o.slice
	cfg.SamplePeriodMs = o.sampleMs
	cfg.SamplePriority = o.prio
	cfg.BatchEvery = o.batch
	if o.yield {
		cfg.WaitPolicy = kernel.WaitYield
	}
	return cfg
}

// simulate runs the demo headless for the configured duration and returns
// the system and board it ran on.
func (o *simOpts) simulate(ctx context.Context) (*app.System, hal.HAL, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	if o.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.duration)
		defer cancel()
	}

	var (
		sys   *app.System
		board hal.HAL
	)
	newApp := func(h hal.HAL) (hal.App, error) {
		s, err := app.New(h, o.config())
		if err != nil {
			return nil, err
		}
		sys, board = s, h
		return s, nil
	}
	err := hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{Enabled: true, Hz: o.hz})
	if sys == nil {
		return nil, nil, err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		err = nil
	}
	var fi kernel.FaultInfo
	if errors.As(err, &fi) {
		return sys, board, fmt.Errorf("kernel fault: %w", err)
	}
	return sys, board, err
}
