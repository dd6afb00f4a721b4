package hal

import "time"

const (
	// SysTickBits is the width of the SysTick reload register.
	SysTickBits = 24
	// Timer3Bits is the width of a general purpose timer in 32-bit mode.
	Timer3Bits = 32
)

// Options configures a board. Zero values select the reference board.
type Options struct {
	ClockHz    uint32
	ArenaWords int
	// ManualTimers leaves timer interrupts to Fire instead of wall time.
	ManualTimers bool
	// Now is the probe clock.
	Now func() time.Time
}

// Firer is implemented by timers that can be stepped by hand.
type Firer interface {
	Fire()
}

// Prober exposes the recording side of the debug pins.
type Prober interface {
	Probes() []Probe
}

// board is the part of a HAL that is the same on every platform: one core,
// the thread-switch timer and the periodic timer.
type board struct {
	core    *core
	systick *countdownTimer
	timer3  *countdownTimer
}

func newBoard(opts Options) board {
	c := newCore(opts.ClockHz, opts.ArenaWords)
	st := newCountdownTimer(IRQSysTick, c, c.clockHz, SysTickBits)
	t3 := newCountdownTimer(IRQTimer3A, c, c.clockHz, Timer3Bits)
	st.manual = opts.ManualTimers
	t3.manual = opts.ManualTimers
	c.onHalt = func() {
		st.Stop()
		t3.Stop()
	}
	return board{core: c, systick: st, timer3: t3}
}

func (b *board) CPU() CPU       { return b.core }
func (b *board) SysTick() Timer { return b.systick }
func (b *board) Timer3() Timer  { return b.timer3 }
