//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled    bool
	Hz         int
	Ticks      uint64
	StepBudget int
	Options    Options
}

// errTicksDone stops the runner once the configured frame count is reached.
var errTicksDone = errors.New("headless: tick budget reached")

// RunHeadless runs the app without opening a window. The kernel and the frame
// loop run side by side; the first error from either stops both.
func RunHeadless(ctx context.Context, newApp NewApp, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 1
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := NewWithOptions(cfg.Options)
	app, err := newApp(h)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Run(gctx)
	})
	g.Go(func() error {
		t := time.NewTicker(d)
		defer t.Stop()

		var tick uint64
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-t.C:
				for i := 0; i < cfg.StepBudget; i++ {
					if err := app.Step(); err != nil {
						return err
					}
				}
				tick++
				if cfg.Ticks > 0 && tick >= cfg.Ticks {
					return errTicksDone
				}
			}
		}
	})

	err = g.Wait()
	if errors.Is(err, errTicksDone) || (errors.Is(err, context.Canceled) && ctx.Err() == nil) {
		return nil
	}
	return err
}
