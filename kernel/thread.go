package kernel

import (
	"fmt"
	"sync/atomic"
)

const (
	// MaxThreads is the size of the thread pool.
	MaxThreads = 8
	// DefaultStackWords is used when AddThread is given no stack size.
	DefaultStackWords = 128
)

// tcb is one slot of the thread ring. Its successor is the next slot,
// wrapping at the ring size.
type tcb struct {
	sp     uintptr
	name   string
	slices atomic.Uint64
}

// ThreadInfo is a snapshot of one thread slot.
type ThreadInfo struct {
	ID     int
	Name   string
	Slices uint64
}

// AddThread adds fn to the ring with a private stack of stackWords words.
// Threads can only be added before Launch. fn must never return.
func (k *Kernel) AddThread(name string, fn func(), stackWords int) error {
	if fn == nil {
		return fmt.Errorf("rtk: thread %q: nil entry", name)
	}
	if stackWords <= 0 {
		stackWords = DefaultStackWords
	}
	s := &k.sched
	if s.launched.Load() {
		return ErrLaunched
	}

	k.Enter()
	defer k.Exit()

	id := int(s.count.Load())
	if id >= MaxThreads {
		return ErrTooManyThreads
	}
	top, err := k.cpu.NewStack(stackWords)
	if err != nil {
		return fmt.Errorf("rtk: thread %q: %w", name, err)
	}
	t := &s.threads[id]
	t.name = name
	t.sp = k.cpu.InitStack(top, k.threadMain(id, name, fn))
	s.count.Add(1)
	k.logf("thread %d %q added stack=%dw", id, name, stackWords)
	return nil
}

// threadMain wraps a thread entry so that a panic or a return becomes a
// kernel fault.
func (k *Kernel) threadMain(id int, name string, fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				k.fault(FaultInfo{Kind: FaultPanic, Thread: name, Value: r})
			}
		}()
		fn()
		k.fault(FaultInfo{Kind: FaultReturned, Thread: name, Value: id})
	}
}

// Threads returns a snapshot of the ring.
func (k *Kernel) Threads() []ThreadInfo {
	s := &k.sched
	n := int(s.count.Load())
	out := make([]ThreadInfo, n)
	for i := 0; i < n; i++ {
		t := &s.threads[i]
		out[i] = ThreadInfo{ID: i, Name: t.name, Slices: t.slices.Load()}
	}
	return out
}
