package kernel

import (
	"sync/atomic"

	"rtk/hal"
)

// Semaphore is a counting or binary semaphore. It has no owner and no wait
// queue. The value is only changed inside the critical section; Value may be
// read from anywhere.
type Semaphore struct {
	value atomic.Int32
}

// Value returns the current count.
func (s *Semaphore) Value() int32 { return s.value.Load() }

// InitSemaphore sets the count.
func (k *Kernel) InitSemaphore(s *Semaphore, v int32) {
	k.Enter()
	s.value.Store(v)
	k.Exit()
}

// Signal increments the count. Safe from interrupt handlers.
func (k *Kernel) Signal(s *Semaphore) {
	k.Enter()
	s.value.Add(1)
	k.Exit()
}

// Wait returns once the count is positive, decrementing it. Interrupts are
// enabled between checks so the tick can rotate threads and handlers can
// signal.
func (k *Kernel) Wait(s *Semaphore) {
	k.Enter()
	for s.value.Load() <= 0 {
		k.unavailable()
	}
	s.value.Add(-1)
	k.Exit()
}

// BinarySignal makes the semaphore available.
func (k *Kernel) BinarySignal(s *Semaphore) {
	k.Enter()
	s.value.Store(1)
	k.Exit()
}

// BinaryWait returns once the semaphore is available and takes it. It spins
// while the value is 0, unlike the original board code's loop on value 1.
func (k *Kernel) BinaryWait(s *Semaphore) {
	k.Enter()
	for s.value.Load() == 0 {
		k.unavailable()
	}
	s.value.Store(0)
	k.Exit()
}

// unavailable briefly opens the critical section. Called and returns with
// interrupts disabled.
func (k *Kernel) unavailable() {
	if k.cfg.WaitPolicy == WaitYield && k.sched.launched.Load() {
		k.cpu.Pend(hal.IRQSysTick)
	}
	k.Exit()
	k.Enter()
}
