package kernel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rtk/hal"
)

const fakeClockHz = 50_000_000

// fakeCPU records what the kernel asks of the platform. Interrupts are only
// taken when a test calls deliver.
type fakeCPU struct {
	t interface{ Fatalf(string, ...any) }

	masked  bool
	enables int
	// onEnable runs once, right after the next Enable.
	onEnable func()

	handlers [2]func()
	prio     [2]hal.Priority
	enabled  [2]bool
	pending  [2]bool

	nextTop uintptr
	entries []func()
	frames  map[uintptr]int
	live    int

	saves    []int // context saved by each SaveRegisters
	restores []int
	unmasked int // Save/Restore calls made with interrupts enabled

	halted error
}

func newFakeCPU(t interface{ Fatalf(string, ...any) }) *fakeCPU {
	return &fakeCPU{t: t, nextTop: hal.SRAMBase + 0x8000, frames: map[uintptr]int{}, live: -1}
}

func (c *fakeCPU) Disable() {
	if c.masked {
		c.t.Fatalf("Disable while already disabled")
	}
	c.masked = true
}

func (c *fakeCPU) Enable() {
	c.masked = false
	c.enables++
	if fn := c.onEnable; fn != nil {
		c.onEnable = nil
		fn()
	}
}

func (c *fakeCPU) SetHandler(irq hal.IRQ, h func())      { c.handlers[irq] = h }
func (c *fakeCPU) SetPriority(irq hal.IRQ, p hal.Priority) { c.prio[irq] = p }
func (c *fakeCPU) EnableIRQ(irq hal.IRQ)                  { c.enabled[irq] = true }
func (c *fakeCPU) Pend(irq hal.IRQ)                       { c.pending[irq] = true }

// deliver runs the handler for irq as if the line had fired.
func (c *fakeCPU) deliver(irq hal.IRQ) {
	if !c.enabled[irq] || c.handlers[irq] == nil {
		c.t.Fatalf("deliver %v: line not armed", irq)
	}
	c.pending[irq] = false
	c.handlers[irq]()
}

func (c *fakeCPU) NewStack(words int) (uintptr, error) {
	if words < hal.FrameWords {
		return 0, fmt.Errorf("stack too small")
	}
	top := c.nextTop
	c.nextTop -= uintptr(words) * 4
	return top, nil
}

func (c *fakeCPU) InitStack(top uintptr, entry func()) uintptr {
	sp := top - hal.FrameBytes
	c.frames[sp] = len(c.entries)
	c.entries = append(c.entries, entry)
	return sp
}

func (c *fakeCPU) SaveRegisters(sp uintptr) uintptr {
	if !c.masked {
		c.unmasked++
	}
	sp -= hal.FrameBytes
	c.frames[sp] = c.live
	c.saves = append(c.saves, c.live)
	return sp
}

func (c *fakeCPU) RestoreRegisters(sp uintptr) uintptr {
	if !c.masked {
		c.unmasked++
	}
	id, ok := c.frames[sp]
	if !ok {
		c.t.Fatalf("RestoreRegisters(%#x): no frame", sp)
	}
	c.live = id
	c.restores = append(c.restores, id)
	return sp + hal.FrameBytes
}

func (c *fakeCPU) ClockHz() uint32 { return fakeClockHz }

func (c *fakeCPU) Run(ctx context.Context) error {
	if c.halted != nil {
		return c.halted
	}
	return nil
}

func (c *fakeCPU) Halt(err error) {
	if c.halted == nil {
		c.halted = err
	}
}

type fakeTimer struct {
	irq     hal.IRQ
	max     uint32
	load    uint32
	running bool
	clears  int
}

func (t *fakeTimer) IRQ() hal.IRQ    { return t.irq }
func (t *fakeTimer) MaxLoad() uint32 { return t.max }
func (t *fakeTimer) Load() uint32    { return t.load }
func (t *fakeTimer) Start()          { t.running = true }
func (t *fakeTimer) Stop()           { t.running = false }
func (t *fakeTimer) Running() bool   { return t.running }
func (t *fakeTimer) ClearInterrupt() { t.clears++ }

func (t *fakeTimer) SetLoad(v uint32) error {
	if v == 0 || v > t.max {
		return hal.ErrLoadRange
	}
	t.load = v
	return nil
}

type fakePin struct {
	name   string
	mode   hal.GPIOMode
	writes []bool
}

func (p *fakePin) Name() string        { return p.name }
func (p *fakePin) Caps() hal.GPIOCaps  { return hal.GPIOCapOutput }
func (p *fakePin) Read() (bool, error) { return len(p.writes) > 0 && p.writes[len(p.writes)-1], nil }

func (p *fakePin) Configure(mode hal.GPIOMode, pull hal.GPIOPull) error {
	p.mode = mode
	return nil
}

func (p *fakePin) Write(level bool) error {
	if p.mode != hal.GPIOModeOutput {
		return fmt.Errorf("pin %s not output", p.name)
	}
	p.writes = append(p.writes, level)
	return nil
}

type fakeGPIO []*fakePin

func (g fakeGPIO) PinCount() int { return len(g) }

func (g fakeGPIO) Pin(id int) hal.GPIOPin {
	if id < 0 || id >= len(g) {
		return nil
	}
	return g[id]
}

type fakeLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *fakeLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *fakeLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *fakeLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

type fakeHAL struct {
	cpu     *fakeCPU
	systick *fakeTimer
	timer3  *fakeTimer
	gpio    fakeGPIO
	log     *fakeLogger
}

func newFakeHAL(t interface{ Fatalf(string, ...any) }) *fakeHAL {
	return &fakeHAL{
		cpu:     newFakeCPU(t),
		systick: &fakeTimer{irq: hal.IRQSysTick, max: 1<<24 - 1},
		timer3:  &fakeTimer{irq: hal.IRQTimer3A, max: ^uint32(0)},
		gpio:    fakeGPIO{{name: "PB0"}, {name: "PB1"}},
		log:     &fakeLogger{},
	}
}

func (h *fakeHAL) Logger() hal.Logger   { return h.log }
func (h *fakeHAL) CPU() hal.CPU         { return h.cpu }
func (h *fakeHAL) SysTick() hal.Timer   { return h.systick }
func (h *fakeHAL) Timer3() hal.Timer    { return h.timer3 }
func (h *fakeHAL) GPIO() hal.GPIO       { return h.gpio }
func (h *fakeHAL) Display() hal.Display { return nil }

// newFakeKernel returns a kernel with the named threads added.
func newFakeKernel(t interface{ Fatalf(string, ...any) }, names ...string) (*Kernel, *fakeHAL) {
	h := newFakeHAL(t)
	k := New(h, Config{})
	for _, name := range names {
		if err := k.AddThread(name, func() { select {} }, 0); err != nil {
			t.Fatalf("AddThread(%q): %v", name, err)
		}
	}
	return k, h
}
