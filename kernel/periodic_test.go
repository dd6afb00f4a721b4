package kernel

import (
	"errors"
	"testing"

	"rtk/hal"
)

func TestAddPeriodicThreadRange(t *testing.T) {
	tests := []struct {
		period, prio int
		wantOK       bool
	}{
		{0, 3, false},
		{10, 9, false},
		{10, 3, true},
		{MinPeriodMs, 0, true},
		{MaxPeriodMs, MaxPriority, true},
		{MaxPeriodMs + 1, 0, false},
		{-5, 0, false},
		{10, -1, false},
		{10, MaxPriority + 1, false},
	}
	for _, tc := range tests {
		k, h := newFakeKernel(t)
		err := k.AddPeriodicThread(func() {}, tc.period, tc.prio)
		if tc.wantOK {
			if err != nil {
				t.Fatalf("AddPeriodicThread(cb, %d, %d) = %v, want nil", tc.period, tc.prio, err)
			}
			if want := uint32(fakeClockHz / 1000 * tc.period); h.timer3.load != want {
				t.Fatalf("load = %d, want %d", h.timer3.load, want)
			}
			if !h.timer3.running || !h.cpu.enabled[hal.IRQTimer3A] {
				t.Fatal("Timer3 not armed")
			}
			if h.cpu.prio[hal.IRQTimer3A] != hal.Priority(tc.prio) {
				t.Fatalf("prio = %d, want %d", h.cpu.prio[hal.IRQTimer3A], tc.prio)
			}
			continue
		}
		if !errors.Is(err, ErrRange) {
			t.Fatalf("AddPeriodicThread(cb, %d, %d) = %v, want %v", tc.period, tc.prio, err, ErrRange)
		}
		if h.timer3.running || h.cpu.handlers[hal.IRQTimer3A] != nil {
			t.Fatalf("AddPeriodicThread(cb, %d, %d) armed Timer3 on failure", tc.period, tc.prio)
		}
	}
}

func TestFailedRegistrationKeepsArmedTimer(t *testing.T) {
	k, h := newFakeKernel(t)
	var first, second int
	if err := k.AddPeriodicThread(func() { first++ }, 10, 3); err != nil {
		t.Fatalf("AddPeriodicThread: %v", err)
	}
	if err := k.AddPeriodicThread(func() { second++ }, 0, 3); !errors.Is(err, ErrRange) {
		t.Fatalf("AddPeriodicThread(cb, 0, 3) = %v, want %v", err, ErrRange)
	}
	if err := k.AddPeriodicThread(func() { second++ }, 10, 8); !errors.Is(err, ErrRange) {
		t.Fatalf("AddPeriodicThread(cb, 10, 8) = %v, want %v", err, ErrRange)
	}

	if h.timer3.load != fakeClockHz/1000*10 || !h.timer3.running || h.cpu.prio[hal.IRQTimer3A] != 3 {
		t.Fatalf("timer changed: load=%d running=%v prio=%d", h.timer3.load, h.timer3.running, h.cpu.prio[hal.IRQTimer3A])
	}
	h.cpu.deliver(hal.IRQTimer3A)
	if first != 1 || second != 0 {
		t.Fatalf("callbacks = %d, %d; want 1, 0", first, second)
	}
}

// A second registration silently replaces the first callback and period.
func TestSecondRegistrationOverwrites(t *testing.T) {
	k, h := newFakeKernel(t)
	var first, second int
	if err := k.AddPeriodicThread(func() { first++ }, 10, 3); err != nil {
		t.Fatalf("AddPeriodicThread: %v", err)
	}
	if err := k.AddPeriodicThread(func() { second++ }, 20, 5); err != nil {
		t.Fatalf("AddPeriodicThread: %v", err)
	}
	h.cpu.deliver(hal.IRQTimer3A)
	h.cpu.deliver(hal.IRQTimer3A)
	if first != 0 || second != 2 {
		t.Fatalf("callbacks = %d, %d; want 0, 2", first, second)
	}
	if h.timer3.load != fakeClockHz/1000*20 {
		t.Fatalf("load = %d, want the second period", h.timer3.load)
	}
}

func TestMsTimeCountsFirings(t *testing.T) {
	k, h := newFakeKernel(t)
	if err := k.AddPeriodicThread(func() {}, 1, 0); err != nil {
		t.Fatalf("AddPeriodicThread: %v", err)
	}
	for i := 0; i < 7; i++ {
		h.cpu.deliver(hal.IRQTimer3A)
	}
	if got := k.MsTime(); got != 7 {
		t.Fatalf("MsTime() = %d, want 7", got)
	}

	k.ClearMsTime()
	if got := k.MsTime(); got != 0 {
		t.Fatalf("MsTime() after clear = %d, want 0", got)
	}
	const n = 25
	for i := 0; i < n; i++ {
		h.cpu.deliver(hal.IRQTimer3A)
	}
	if got := k.MsTime(); got != n {
		t.Fatalf("MsTime() = %d, want %d", got, n)
	}
}

func TestPeriodicHandlerSequence(t *testing.T) {
	k, h := newFakeKernel(t)
	if err := k.DebugProfileInit(); err != nil {
		t.Fatalf("DebugProfileInit: %v", err)
	}
	pb0 := h.gpio[0]
	pb0.writes = nil

	var clearsSeen int
	var pinSeen bool
	var msSeen int64
	err := k.AddPeriodicThread(func() {
		clearsSeen = h.timer3.clears
		pinSeen, _ = pb0.Read()
		msSeen = k.MsTime()
	}, 2, 1)
	if err != nil {
		t.Fatalf("AddPeriodicThread: %v", err)
	}
	clears := h.timer3.clears
	h.cpu.deliver(hal.IRQTimer3A)

	if clearsSeen != clears+1 {
		t.Fatal("interrupt flag not cleared before the callback")
	}
	if !pinSeen {
		t.Fatal("PB0 low while the callback ran")
	}
	if msSeen != 0 || k.MsTime() != 1 {
		t.Fatalf("counter: during=%d after=%d, want 0 and 1", msSeen, k.MsTime())
	}
	if len(pb0.writes) != 2 || !pb0.writes[0] || pb0.writes[1] {
		t.Fatalf("PB0 writes = %v, want [true false]", pb0.writes)
	}
}

func TestDebugPins(t *testing.T) {
	k, h := newFakeKernel(t)
	// Before init the pins are left alone.
	k.DebugSet(DebugB1)
	if len(h.gpio[1].writes) != 0 {
		t.Fatal("DebugSet wrote before DebugProfileInit")
	}
	if err := k.DebugProfileInit(); err != nil {
		t.Fatalf("DebugProfileInit: %v", err)
	}
	k.DebugSet(DebugB1)
	k.DebugClear(DebugB1)
	got := h.gpio[1].writes
	if len(got) != 3 || got[0] || !got[1] || got[2] {
		t.Fatalf("PB1 writes = %v, want [false true false]", got)
	}
	if DebugB0.String() != "PB0" || DebugB1.String() != "PB1" {
		t.Fatalf("names = %v %v", DebugB0, DebugB1)
	}

	h2 := newFakeHAL(t)
	h2.gpio = h2.gpio[:1]
	if err := New(h2, Config{}).DebugProfileInit(); err == nil {
		t.Fatal("DebugProfileInit without PB1 = nil, want error")
	}
}
