package kernel

import (
	"context"
	"fmt"
	"sync/atomic"

	"rtk/hal"
)

// Accepted thread switch periods. The reload must also fit SysTick.
const (
	MinThreadSwitchMs = 1
	MaxThreadSwitchMs = 300
)

// Scheduler rotates the thread ring on every SysTick. There are no
// priorities and no blocked state: the thread after the current one always
// runs next.
type Scheduler struct {
	k *Kernel

	threads [MaxThreads]tcb
	count   atomic.Int32

	current  atomic.Int32
	ticks    atomic.Uint64
	launched atomic.Bool
}

// tick is the SysTick handler: save the current context, advance the ring,
// restore the next context.
func (s *Scheduler) tick() {
	if !s.launched.Load() {
		return
	}
	k := s.k
	k.Enter()
	cur := int(s.current.Load())
	t := &s.threads[cur]
	t.sp = k.cpu.SaveRegisters(t.sp)

	next := (cur + 1) % int(s.count.Load())
	t = &s.threads[next]
	t.sp = k.cpu.RestoreRegisters(t.sp)
	t.slices.Add(1)
	s.current.Store(int32(next))
	s.ticks.Add(1)
	k.Exit()
}

// InitThreadSwitch arms SysTick to interrupt every periodMs milliseconds.
// On a range error SysTick is left as it was.
func (k *Kernel) InitThreadSwitch(periodMs int) error {
	if err := checkRange("thread switch period (ms)", periodMs, MinThreadSwitchMs, MaxThreadSwitchMs); err != nil {
		k.logf("thread switch: %v", err)
		return err
	}
	st := k.h.SysTick()
	load := uint64(k.cpu.ClockHz()) / 1000 * uint64(periodMs)
	if load > uint64(st.MaxLoad()) {
		err := fmt.Errorf("thread switch period %dms needs reload %d > %d: %w", periodMs, load, st.MaxLoad(), ErrRange)
		k.logf("thread switch: %v", err)
		return err
	}

	st.Stop()
	if err := st.SetLoad(uint32(load)); err != nil {
		return fmt.Errorf("thread switch: %w", err)
	}
	st.ClearInterrupt()
	k.cpu.EnableIRQ(hal.IRQSysTick)
	st.Start()
	k.logf("thread switch armed period=%dms", periodMs)
	return nil
}

// Launch arms the thread switch timer, makes thread 0 current and hands the
// CPU to it. It blocks until ctx is done or the kernel faults.
func (k *Kernel) Launch(ctx context.Context, periodMs int) error {
	s := &k.sched
	if s.launched.Load() {
		return ErrLaunched
	}
	if s.count.Load() == 0 {
		return ErrNoThreads
	}
	if err := k.InitThreadSwitch(periodMs); err != nil {
		return err
	}

	k.Enter()
	t := &s.threads[0]
	t.sp = k.cpu.RestoreRegisters(t.sp)
	t.slices.Add(1)
	s.current.Store(0)
	k.Exit()
	s.launched.Store(true)

	k.logf("launch threads=%d slice=%dms wait=%s", s.count.Load(), periodMs, k.cfg.WaitPolicy)
	err := k.cpu.Run(ctx)
	k.logf("stopped: %v", err)
	return err
}

// Launched reports whether Launch has handed the CPU to the ring.
func (k *Kernel) Launched() bool { return k.sched.launched.Load() }

// Current returns the index and name of the running thread.
func (k *Kernel) Current() (int, string) {
	i := int(k.sched.current.Load())
	return i, k.sched.threads[i].name
}

// Ticks returns the number of thread switches since launch.
func (k *Kernel) Ticks() uint64 { return k.sched.ticks.Load() }
