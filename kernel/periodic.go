package kernel

import (
	"sync/atomic"

	"rtk/hal"
)

const (
	// MinPeriodMs and MaxPeriodMs bound the periodic task's period.
	MinPeriodMs = 1
	MaxPeriodMs = 100
	// MaxPriority is the least urgent interrupt priority.
	MaxPriority = hal.NumPriorities - 1
)

// Dispatcher runs one periodic callback from Timer3 and counts its firings.
type Dispatcher struct {
	k *Kernel

	task      func()
	msCounter atomic.Int64
}

// AddPeriodicThread runs task every periodMs milliseconds from the Timer3
// interrupt at the given NVIC priority. A later successful call replaces the
// task. On a range error nothing is changed.
func (k *Kernel) AddPeriodicThread(task func(), periodMs, priority int) error {
	if err := checkRange("periodic period (ms)", periodMs, MinPeriodMs, MaxPeriodMs); err != nil {
		k.logf("periodic: %v", err)
		return err
	}
	if err := checkRange("periodic priority", priority, 0, MaxPriority); err != nil {
		k.logf("periodic: %v", err)
		return err
	}

	tm := k.h.Timer3()
	load := k.cpu.ClockHz() / 1000 * uint32(periodMs)

	k.Enter()
	tm.Stop()
	if err := tm.SetLoad(load); err != nil {
		k.Exit()
		return err
	}
	k.periodic.task = task
	tm.ClearInterrupt()
	k.cpu.SetHandler(hal.IRQTimer3A, k.guard("timer3a", k.periodic.interrupt))
	k.cpu.SetPriority(hal.IRQTimer3A, hal.Priority(priority))
	k.cpu.EnableIRQ(hal.IRQTimer3A)
	tm.Start()
	k.Exit()

	k.logf("periodic task armed period=%dms prio=%d", periodMs, priority)
	return nil
}

func (d *Dispatcher) interrupt() {
	k := d.k
	k.DebugSet(DebugB0)
	k.h.Timer3().ClearInterrupt()
	if d.task != nil {
		d.task()
	}
	d.msCounter.Add(1)
	k.DebugClear(DebugB0)
}

// ClearMsTime resets the periodic firing counter.
func (k *Kernel) ClearMsTime() { k.periodic.msCounter.Store(0) }

// MsTime returns the number of periodic firings since the last ClearMsTime.
func (k *Kernel) MsTime() int64 { return k.periodic.msCounter.Load() }
