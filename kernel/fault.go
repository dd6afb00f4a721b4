package kernel

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"rtk/hal"
)

// FaultKind classifies what stopped the kernel.
type FaultKind uint8

const (
	FaultPanic FaultKind = iota + 1
	FaultStack
	FaultReturned
)

func (f FaultKind) String() string {
	switch f {
	case FaultPanic:
		return "panic"
	case FaultStack:
		return "stack overflow"
	case FaultReturned:
		return "thread returned"
	default:
		return "unknown"
	}
}

// FaultInfo describes a kernel fault. It is also the error Launch returns.
type FaultInfo struct {
	Kind   FaultKind
	Thread string // empty for handlers
	Where  string // handler name, if any
	Value  any
	Stack  []byte
}

func (f FaultInfo) Error() string {
	who := f.Thread
	if who == "" {
		who = f.Where
	}
	if f.Value == nil {
		return fmt.Sprintf("rtk: fault: %s in %s", f.Kind, who)
	}
	return fmt.Sprintf("rtk: fault: %s in %s: %v", f.Kind, who, f.Value)
}

type faultState struct {
	active  atomic.Bool
	once    sync.Once
	handler atomic.Value // func(FaultInfo)
}

// InFaultMode reports whether the kernel has faulted.
func (k *Kernel) InFaultMode() bool {
	return k.faults.active.Load()
}

// SetFaultHandler installs a fault handler.
//
// The handler is invoked at most once (on the first fault). It must not panic.
func (k *Kernel) SetFaultHandler(fn func(FaultInfo)) {
	k.faults.handler.Store(fn)
}

// fault records the first fault, reports it and halts the CPU.
func (k *Kernel) fault(info FaultInfo) {
	k.faults.once.Do(func() {
		k.faults.active.Store(true)
		info.Stack = captureStack()
		k.logf("%v", info)
		if v := k.faults.handler.Load(); v != nil {
			if fn, ok := v.(func(FaultInfo)); ok && fn != nil {
				fn(info)
			}
		}
		k.cpu.Halt(info)
	})
}

// guard wraps an interrupt handler so that a panic inside it faults the
// kernel instead of unwinding through the interrupted thread.
func (k *Kernel) guard(where string, h func()) func() {
	return func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			kind := FaultPanic
			if _, ok := r.(*hal.StackFault); ok {
				kind = FaultStack
			}
			k.fault(FaultInfo{Kind: kind, Where: where, Value: r})
			if k.sched.launched.Load() {
				runtime.Goexit()
			}
		}()
		h()
	}
}
