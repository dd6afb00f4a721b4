package hal

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// DefaultClockHz is the system clock of the reference board (LM3S8962 at 50 MHz).
const DefaultClockHz = 50_000_000

var (
	ErrHalted    = errors.New("cpu halted")
	ErrNoContext = errors.New("cpu: no live context")
)

type vector struct {
	handler func()
	prio    Priority
	enabled bool
}

type hwThread struct {
	entry   func()
	baton   chan struct{}
	started atomic.Bool
}

// maskHook lets a target also mask its real interrupt controller.
type maskHook interface {
	disable()
	enable()
}

type nopMask struct{}

func (nopMask) disable() {}
func (nopMask) enable()  {}

// core models a single-core CPU with a global interrupt mask, a vectored
// interrupt controller and thread contexts on private stacks.
//
// Interrupt lines are pended asynchronously (timer goroutines) and taken by
// the goroutine that owns the core at its next instruction boundary, which is
// every Enable. Pending lines are taken highest priority first and tail-chain;
// they never nest.
//
// Each thread context is a goroutine parked on its baton. The PC slot of the
// most recently restored frame names the context that owns the core; when a
// handler chain changes it, the previous owner hands the baton over and parks.
type core struct {
	clockHz uint32
	hook    maskHook
	// yield runs at every instruction boundary so that the goroutines
	// pending timer lines get the CPU on a cooperative scheduler.
	yield func()

	mask   sync.Mutex
	masked atomic.Bool

	irq     sync.Mutex // held while a handler chain runs
	mu      sync.Mutex // protects vectors and pending
	vectors [numIRQ]vector
	pending uint32

	stacks  stackArena
	regs    Registers
	threads []*hwThread
	live    atomic.Int32

	halted   atomic.Bool
	haltOnce sync.Once
	haltErr  error
	stop     chan struct{}
	onHalt   func()
}

func newCore(clockHz uint32, arenaWords int) *core {
	if clockHz == 0 {
		clockHz = DefaultClockHz
	}
	c := &core{
		clockHz: clockHz,
		hook:    nopMask{},
		yield:   boundaryYield,
		stacks:  newStackArena(arenaWords),
		stop:    make(chan struct{}),
	}
	c.live.Store(-1)
	return c
}

func (c *core) ClockHz() uint32 { return c.clockHz }

// Disable masks all interrupts. It does not nest.
func (c *core) Disable() {
	c.mask.Lock()
	c.hook.disable()
	c.masked.Store(true)
}

// Enable unmasks interrupts and takes any pending lines.
func (c *core) Enable() {
	c.masked.Store(false)
	c.hook.enable()
	c.mask.Unlock()
	c.poll()
}

func (c *core) SetHandler(irq IRQ, handler func()) {
	if irq >= numIRQ {
		return
	}
	c.mu.Lock()
	c.vectors[irq].handler = handler
	c.mu.Unlock()
}

func (c *core) SetPriority(irq IRQ, prio Priority) {
	if irq >= numIRQ {
		return
	}
	if prio >= NumPriorities {
		prio = NumPriorities - 1
	}
	c.mu.Lock()
	c.vectors[irq].prio = prio
	c.mu.Unlock()
}

func (c *core) EnableIRQ(irq IRQ) {
	if irq >= numIRQ {
		return
	}
	c.mu.Lock()
	c.vectors[irq].enabled = true
	c.mu.Unlock()
}

// Pend marks irq pending. It never blocks and is safe from any goroutine.
func (c *core) Pend(irq IRQ) {
	if irq >= numIRQ {
		return
	}
	c.mu.Lock()
	c.pending |= 1 << irq
	c.mu.Unlock()
}

// Pending reports whether irq is waiting to be taken.
func (c *core) Pending(irq IRQ) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending&(1<<irq) != 0
}

func (c *core) nextHandler() func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	best := -1
	for i := range c.vectors {
		v := &c.vectors[i]
		if c.pending&(1<<i) == 0 || !v.enabled || v.handler == nil {
			continue
		}
		if best < 0 || v.prio < c.vectors[best].prio {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	c.pending &^= 1 << best
	return c.vectors[best].handler
}

// poll is the instruction boundary: take pending lines, then hand the core to
// whichever context the handlers restored.
func (c *core) poll() {
	self := c.live.Load()
	if self >= 0 && c.halted.Load() {
		runtime.Goexit()
	}
	if c.yield != nil {
		c.yield()
	}
	if c.masked.Load() || !c.irq.TryLock() {
		// Masked, or a handler chain is already running and will drain the
		// pending set before it returns.
		return
	}
	for !c.masked.Load() {
		h := c.nextHandler()
		if h == nil {
			break
		}
		h()
	}
	c.irq.Unlock()

	if self < 0 {
		return
	}
	if next := c.live.Load(); next != self {
		c.switchTo(self, next)
	}
}

func (c *core) switchTo(from, to int32) {
	c.resume(to)
	t := c.threads[from]
	select {
	case <-t.baton:
	case <-c.stop:
		runtime.Goexit()
	}
	if c.halted.Load() {
		runtime.Goexit()
	}
}

func (c *core) resume(i int32) {
	if i < 0 || int(i) >= len(c.threads) {
		c.Halt(fmt.Errorf("cpu: resume of unknown context %d", i))
		return
	}
	t := c.threads[i]
	if t.started.CompareAndSwap(false, true) {
		go c.runThread(i, t)
		return
	}
	select {
	case t.baton <- struct{}{}:
	default:
	}
}

func (c *core) runThread(i int32, t *hwThread) {
	returned := false
	defer func() {
		if returned {
			c.Halt(fmt.Errorf("cpu: context %d returned", i))
		}
	}()
	t.entry()
	returned = true
}

// Run hands the core to the live context and blocks until ctx is done or
// the core halts.
func (c *core) Run(ctx context.Context) error {
	idx := c.live.Load()
	if idx < 0 {
		return ErrNoContext
	}
	if c.halted.Load() {
		return c.err()
	}
	c.resume(idx)
	select {
	case <-ctx.Done():
		c.Halt(nil)
		return ctx.Err()
	case <-c.stop:
		return c.err()
	}
}

// Halt stops the core. Parked contexts exit at once; the live context exits
// at its next instruction boundary.
func (c *core) Halt(err error) {
	c.haltOnce.Do(func() {
		if err == nil {
			err = ErrHalted
		}
		c.haltErr = err
		c.halted.Store(true)
		close(c.stop)
		if c.onHalt != nil {
			c.onHalt()
		}
	})
}

func (c *core) err() error {
	<-c.stop
	return c.haltErr
}
