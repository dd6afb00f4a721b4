package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rtk/hal"
	"rtk/kernel"
)

func TestNewRegistersDemoThreads(t *testing.T) {
	s, err := New(hal.NewWithOptions(hal.Options{ManualTimers: true}), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := strings.Join(s.ThreadNames(), " "), "consumer ping pong idle"; got != want {
		t.Fatalf("ThreadNames() = %q, want %q", got, want)
	}
	cfg := s.Config()
	if cfg.SliceMs != 2 || cfg.SamplePeriodMs != 1 || cfg.SamplePriority != 3 || cfg.BatchEvery != 10 {
		t.Fatalf("Config() = %+v, want defaults", cfg)
	}
	if s.Kernel().Launched() {
		t.Fatal("New launched the kernel")
	}
}

func TestNewRejectsBadSampler(t *testing.T) {
	for _, period := range []int{0, 500} {
		cfg := DefaultConfig()
		cfg.SamplePeriodMs = period
		_, err := New(hal.NewWithOptions(hal.Options{ManualTimers: true}), cfg)
		if !errors.Is(err, kernel.ErrRange) {
			t.Fatalf("New(period %d) = %v, want %v", period, err, kernel.ErrRange)
		}
	}
	// A zero Config is not filled in behind the caller's back.
	if _, err := New(hal.NewWithOptions(hal.Options{ManualTimers: true}), Config{}); !errors.Is(err, kernel.ErrRange) {
		t.Fatalf("New(Config{}) = %v, want %v", err, kernel.ErrRange)
	}
}

func TestConfigPassesThrough(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SamplePriority = 0
	s, err := New(hal.NewWithOptions(hal.Options{ManualTimers: true}), cfg)
	if err != nil {
		t.Fatalf("New(priority 0): %v", err)
	}
	if got := s.Config().SamplePriority; got != 0 {
		t.Fatalf("SamplePriority = %d, want 0", got)
	}

	cfg = DefaultConfig()
	cfg.SliceMs = 0
	s, err = New(hal.NewWithOptions(hal.Options{ManualTimers: true}), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, kernel.ErrRange) {
		t.Fatalf("Run(slice 0) = %v, want %v", err, kernel.ErrRange)
	}
}

func TestSamplerOnManualBoard(t *testing.T) {
	h := hal.NewWithOptions(hal.Options{ManualTimers: true})
	cfg := DefaultConfig()
	cfg.BatchEvery = 2
	s, err := New(h, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()
	waitUntil(t, "launch", s.Kernel().Launched)

	timer3 := h.Timer3().(hal.Firer)
	for i := 0; i < 4; i++ {
		timer3.Fire()
		want := int64(i + 1)
		waitUntil(t, "sample", func() bool { return s.Kernel().MsTime() == want })
	}
	samples := s.Lanes().Snapshot()
	if len(samples) != 4 {
		t.Fatalf("got %d samples, want 4", len(samples))
	}
	for i, smp := range samples {
		if smp.Ms != int64(i) || smp.Thread != 0 {
			t.Fatalf("sample %d = %+v, want ms %d on consumer", i, smp, i)
		}
	}
	// Two batches were signalled while the consumer held the CPU.
	waitUntil(t, "batches", func() bool { return s.Stats().Batches == 2 })
}

func TestHeadlessRun(t *testing.T) {
	var sys *System
	var board hal.HAL
	newApp := func(h hal.HAL) (hal.App, error) {
		s, err := New(h, DefaultConfig())
		sys, board = s, h
		return s, err
	}
	err := hal.RunHeadless(context.Background(), newApp, hal.HeadlessConfig{Hz: 50, Ticks: 15})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	k := sys.Kernel()
	if k.Ticks() == 0 || k.MsTime() == 0 {
		t.Fatalf("ticks=%d ms=%d, want both > 0", k.Ticks(), k.MsTime())
	}
	if len(sys.Lanes().Snapshot()) == 0 {
		t.Fatal("no samples recorded")
	}

	buf := board.Display().Framebuffer().Buffer()
	lit := false
	for _, b := range buf {
		if b != 0 {
			lit = true
			break
		}
	}
	if !lit {
		t.Fatal("nothing was drawn")
	}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(50 * time.Microsecond)
	}
}
