package hal

import (
	"context"
	"errors"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// IRQ is an interrupt line number on the vectored interrupt controller.
type IRQ uint8

// Priority is an interrupt priority. Lower values are more urgent.
type Priority uint8

// NumPriorities is the number of implemented priority levels (3 bits).
const NumPriorities = 8

const (
	IRQSysTick IRQ = iota
	IRQTimer3A
	numIRQ
)

func (i IRQ) String() string {
	switch i {
	case IRQSysTick:
		return "SysTick"
	case IRQTimer3A:
		return "Timer3A"
	default:
		return "IRQ?"
	}
}

// Interrupts is the global interrupt mask plus the interrupt controller.
//
// Disable/Enable do not nest: a second Disable before Enable is undefined.
type Interrupts interface {
	Disable()
	Enable()
	SetHandler(irq IRQ, handler func())
	SetPriority(irq IRQ, prio Priority)
	EnableIRQ(irq IRQ)
	Pend(irq IRQ)
}

// Context saves and restores thread execution contexts on private stacks.
//
// SaveRegisters and RestoreRegisters may only be called with interrupts
// disabled, from the thread-switch handler or while launching.
type Context interface {
	// NewStack reserves a private stack region and returns its top.
	NewStack(words int) (top uintptr, err error)
	// InitStack lays down an initial frame so that restoring it starts entry.
	InitStack(top uintptr, entry func()) uintptr
	// SaveRegisters pushes the live context below sp and returns the new top.
	SaveRegisters(sp uintptr) uintptr
	// RestoreRegisters pops the context at sp, makes it live and returns the
	// stack pointer after the pop.
	RestoreRegisters(sp uintptr) uintptr
}

// Timer is a periodic countdown timer that raises one interrupt line.
type Timer interface {
	IRQ() IRQ
	// MaxLoad is the largest reload value the counter can hold.
	MaxLoad() uint32
	SetLoad(cycles uint32) error
	Load() uint32
	Start()
	Stop()
	Running() bool
	// ClearInterrupt acknowledges the timeout flag.
	ClearInterrupt()
}

// CPU is the single execution core.
type CPU interface {
	Interrupts
	Context
	// ClockHz is the system clock frequency.
	ClockHz() uint32
	// Run hands the core to the live context and blocks until ctx is done
	// or the core halts.
	Run(ctx context.Context) error
	// Halt stops the core; Run returns err.
	Halt(err error)
}

// HAL provides the only contact point between the kernel and the outside world.
type HAL interface {
	Logger() Logger
	CPU() CPU
	SysTick() Timer
	Timer3() Timer
	GPIO() GPIO
	Display() Display
}

// App is what the host runners drive. Run owns the CPU until ctx is done;
// Step renders one frame and is called from the runner's own goroutine.
type App interface {
	Run(ctx context.Context) error
	Step() error
}

// NewApp builds an App on a freshly created HAL.
type NewApp func(HAL) (App, error)
