//go:build !tinygo

package main

import (
	"errors"
	"time"

	"rtk/hal"
	"rtk/internal/profile"
	"rtk/kernel"

	"github.com/spf13/cobra"
)

var (
	profileOpts simOpts

	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Measure period and jitter of the periodic task from PB0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, board, err := profileOpts.simulate(cmd.Context())
			if err != nil {
				return err
			}
			pin := probe(board, kernel.DebugB0.String())
			if pin == nil {
				return errors.New("board records no PB0 edges")
			}
			nominal := time.Duration(profileOpts.sampleMs) * time.Millisecond
			r, err := profile.Analyze(pin.Edges(), nominal)
			if err != nil {
				return err
			}
			_, err = r.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
)

func init() {
	profileOpts.register(profileCmd, time.Second)
}

func probe(h hal.HAL, name string) hal.Probe {
	p, ok := h.(hal.Prober)
	if !ok {
		return nil
	}
	for _, pin := range p.Probes() {
		if pin.Name() == name {
			return pin
		}
	}
	return nil
}
