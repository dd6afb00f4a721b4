// Package app is a demo system for the kernel: a periodic sampler producing
// batches for a consumer thread, a ping/pong pair handing a binary token back
// and forth, and an idle thread. On platforms with a framebuffer it renders a
// scope view of the thread lanes and debug pins above a log console.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"rtk/hal"
	"rtk/kernel"
)

// Config is passed through to the kernel as is: a zero SliceMs or
// SamplePeriodMs is rejected by the kernel, and SamplePriority 0 is the most
// urgent level. Start from DefaultConfig.
type Config struct {
	// SliceMs is the thread switch period.
	SliceMs int
	// SamplePeriodMs and SamplePriority configure the periodic sampler.
	SamplePeriodMs int
	SamplePriority int
	// BatchEvery is the number of samples per batch signalled to the consumer.
	BatchEvery int
	WaitPolicy kernel.WaitPolicy
	// TraceSamples bounds the sample history.
	TraceSamples int
}

// DefaultConfig is the demo as shipped: 2 ms slices and a 1 ms sampler at
// priority 3.
func DefaultConfig() Config {
	return Config{
		SliceMs:        2,
		SamplePeriodMs: 1,
		SamplePriority: 3,
		BatchEvery:     10,
		TraceSamples:   4096,
	}
}

// withDefaults sizes the app-side buffers only.
func (c Config) withDefaults() Config {
	if c.BatchEvery <= 0 {
		c.BatchEvery = 10
	}
	if c.TraceSamples <= 0 {
		c.TraceSamples = 4096
	}
	return c
}

// Stats counts work done by the demo threads.
type Stats struct {
	Batches    uint64
	Handshakes uint64
	IdleLoops  uint64
}

// System wires the demo threads onto a kernel.
type System struct {
	h   hal.HAL
	k   *kernel.Kernel
	cfg Config
	log *consoleLogger

	batches    kernel.Semaphore
	ping, pong kernel.Semaphore
	pb1        atomic.Bool

	consumed   atomic.Uint64
	handshakes atomic.Uint64
	idle       atomic.Uint64

	lanes *Lanes

	drawMu  sync.Mutex
	screen  *fbDisplay
	scope   *scope
	console *console
}

var _ hal.App = (*System)(nil)

// New builds the demo system. Nothing runs until Run.
func New(h hal.HAL, cfg Config) (*System, error) {
	cfg = cfg.withDefaults()
	log := newConsoleLogger(h.Logger())
	k := kernel.New(h, kernel.Config{Logger: log, WaitPolicy: cfg.WaitPolicy})

	s := &System{
		h:     h,
		k:     k,
		cfg:   cfg,
		log:   log,
		lanes: newLanes(cfg.TraceSamples),
	}
	s.initScreen()
	s.installFaultHandler()

	if err := k.DebugProfileInit(); err != nil {
		log.WriteLineString("app: debug pins unavailable: " + err.Error())
	}

	k.InitSemaphore(&s.batches, 0)
	k.InitSemaphore(&s.ping, 1)
	k.InitSemaphore(&s.pong, 0)

	threads := []struct {
		name string
		fn   func()
	}{
		{"consumer", s.consumer},
		{"ping", s.pinger},
		{"pong", s.ponger},
		{"idle", s.idler},
	}
	for _, t := range threads {
		if err := k.AddThread(t.name, t.fn, kernel.DefaultStackWords); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}
	if err := k.AddPeriodicThread(s.sample, cfg.SamplePeriodMs, cfg.SamplePriority); err != nil {
		return nil, fmt.Errorf("app: sampler: %w", err)
	}
	return s, nil
}

func (s *System) initScreen() {
	disp := s.h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil || fb.Buffer() == nil || fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	fb.ClearRGB(0, 0, 0)
	consoleH := fb.Height() * 3 / 10
	s.screen = newFBDisplay(fb, 0, 0, fb.Width(), fb.Height())
	s.scope = newScope(newFBDisplay(fb, 0, 0, fb.Width(), fb.Height()-consoleH), s.h)
	s.console = newConsole(newFBDisplay(fb, 0, fb.Height()-consoleH, fb.Width(), consoleH), s.log)
}

// Kernel returns the kernel the demo runs on.
func (s *System) Kernel() *kernel.Kernel { return s.k }

// Lanes returns the sample history.
func (s *System) Lanes() *Lanes { return s.lanes }

// Config returns the effective configuration.
func (s *System) Config() Config { return s.cfg }

func (s *System) Stats() Stats {
	return Stats{
		Batches:    s.consumed.Load(),
		Handshakes: s.handshakes.Load(),
		IdleLoops:  s.idle.Load(),
	}
}

// ThreadNames lists the ring in order.
func (s *System) ThreadNames() []string {
	threads := s.k.Threads()
	names := make([]string, len(threads))
	for i, t := range threads {
		names[i] = t.Name
	}
	return names
}

// Run launches the kernel and blocks until ctx is done or the kernel faults.
func (s *System) Run(ctx context.Context) error {
	return s.k.Launch(ctx, s.cfg.SliceMs)
}

// Step renders one frame.
func (s *System) Step() error {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()
	if s.scope == nil || s.k.InFaultMode() {
		return nil
	}
	cur, _ := s.k.Current()
	s.scope.render(scopeState{
		threads: s.k.Threads(),
		current: cur,
		ticks:   s.k.Ticks(),
		msTime:  s.k.MsTime(),
		sliceMs: s.cfg.SliceMs,
		samples: s.lanes.Last(int(s.scope.d.w)),
	})
	s.console.flush()
	return s.screen.Display()
}

// sample is the periodic task.
func (s *System) sample() {
	k := s.k
	ms := k.MsTime()
	cur, _ := k.Current()
	s.lanes.add(Sample{Ms: ms, Thread: cur, PB1: s.pb1.Load()})
	if (ms+1)%int64(s.cfg.BatchEvery) == 0 {
		k.Signal(&s.batches)
	}
}

func (s *System) consumer() {
	for {
		s.k.Wait(&s.batches)
		s.consumed.Add(1)
	}
}

func (s *System) pinger() {
	for {
		s.k.BinaryWait(&s.ping)
		s.pb1.Store(true)
		s.k.DebugSet(kernel.DebugB1)
		s.k.BinarySignal(&s.pong)
	}
}

func (s *System) ponger() {
	for {
		s.k.BinaryWait(&s.pong)
		s.k.DebugClear(kernel.DebugB1)
		s.pb1.Store(false)
		s.handshakes.Add(1)
		s.k.BinarySignal(&s.ping)
	}
}

func (s *System) idler() {
	for {
		s.k.Enter()
		s.idle.Add(1)
		s.k.Exit()
	}
}

// Run builds the demo and runs it forever (TinyGo entrypoint).
func Run(h hal.HAL) {
	s, err := New(h, DefaultConfig())
	if err != nil {
		h.Logger().WriteLineString(err.Error())
		select {}
	}
	if err := s.Run(context.Background()); err != nil {
		h.Logger().WriteLineString("app: " + err.Error())
	}
	select {}
}
