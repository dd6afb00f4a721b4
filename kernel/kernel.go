// Package kernel multiplexes a fixed ring of threads onto one CPU with a
// periodic tick, runs one periodic callback from its own timer, and provides
// counting and binary semaphores built on the global interrupt mask.
package kernel

import (
	"fmt"

	"rtk/hal"
)

// WaitPolicy selects what a thread does while a semaphore is unavailable.
type WaitPolicy uint8

const (
	// WaitSpin keeps the thread on the CPU, re-checking with interrupts
	// briefly enabled, until its slice ends.
	WaitSpin WaitPolicy = iota
	// WaitYield gives the rest of the slice to the next thread in the ring.
	WaitYield
)

func (p WaitPolicy) String() string {
	switch p {
	case WaitSpin:
		return "spin"
	case WaitYield:
		return "yield"
	default:
		return "unknown"
	}
}

// Config tunes a Kernel. The zero value is the reference behaviour.
type Config struct {
	// Logger receives configuration events and faults. Defaults to the
	// platform logger.
	Logger     hal.Logger
	WaitPolicy WaitPolicy
}

// Kernel owns the CPU once launched.
type Kernel struct {
	h   hal.HAL
	cpu hal.CPU
	log hal.Logger
	cfg Config

	sched    Scheduler
	periodic Dispatcher
	debug    [numDebugPins]hal.GPIOPin
	faults   faultState
}

// New creates a kernel on the given platform.
func New(h hal.HAL, cfg Config) *Kernel {
	k := &Kernel{
		h:   h,
		cpu: h.CPU(),
		log: cfg.Logger,
		cfg: cfg,
	}
	if k.log == nil {
		k.log = h.Logger()
	}
	k.sched.k = k
	k.periodic.k = k
	k.cpu.SetHandler(hal.IRQSysTick, k.guard("systick", k.sched.tick))
	return k
}

// Config returns the configuration the kernel was created with.
func (k *Kernel) Config() Config { return k.cfg }

func (k *Kernel) logf(format string, args ...any) {
	if k.log == nil {
		return
	}
	k.log.WriteLineString("rtk: " + fmt.Sprintf(format, args...))
}
