package hal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestInterruptsTakenByPriority(t *testing.T) {
	c := newCore(0, 0)
	var order []IRQ
	c.SetHandler(IRQSysTick, func() { order = append(order, IRQSysTick) })
	c.SetHandler(IRQTimer3A, func() { order = append(order, IRQTimer3A) })
	c.SetPriority(IRQSysTick, 6)
	c.SetPriority(IRQTimer3A, 2)
	c.EnableIRQ(IRQSysTick)
	c.EnableIRQ(IRQTimer3A)

	c.Disable()
	c.Pend(IRQSysTick)
	c.Pend(IRQTimer3A)
	if len(order) != 0 {
		t.Fatalf("handlers ran while masked: %v", order)
	}
	c.Enable()

	if len(order) != 2 || order[0] != IRQTimer3A || order[1] != IRQSysTick {
		t.Fatalf("order = %v, want [Timer3A SysTick]", order)
	}
	if c.Pending(IRQSysTick) || c.Pending(IRQTimer3A) {
		t.Fatal("lines still pending after delivery")
	}
}

func TestDisabledLineStaysPending(t *testing.T) {
	c := newCore(0, 0)
	ran := false
	c.SetHandler(IRQTimer3A, func() { ran = true })
	c.Pend(IRQTimer3A)
	c.Disable()
	c.Enable()
	if ran {
		t.Fatal("handler ran on a line that is not enabled")
	}
	if !c.Pending(IRQTimer3A) {
		t.Fatal("Pending(Timer3A) = false, want true")
	}

	c.EnableIRQ(IRQTimer3A)
	c.Disable()
	c.Enable()
	if !ran {
		t.Fatal("handler did not run once the line was enabled")
	}
}

func TestSetPriorityClamps(t *testing.T) {
	c := newCore(0, 0)
	c.SetPriority(IRQSysTick, 200)
	if p := c.vectors[IRQSysTick].prio; p != NumPriorities-1 {
		t.Fatalf("prio = %d, want %d", p, NumPriorities-1)
	}
}

func TestRunWithoutContext(t *testing.T) {
	c := newCore(0, 0)
	if err := c.Run(context.Background()); !errors.Is(err, ErrNoContext) {
		t.Fatalf("Run() = %v, want %v", err, ErrNoContext)
	}
}

func TestContextSwitchHandsOverCore(t *testing.T) {
	c := newCore(0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan string)
	thread := func(name string) func() {
		return func() {
			for {
				select {
				case out <- name:
				case <-ctx.Done():
				}
				c.Pend(IRQSysTick)
				c.Disable()
				c.Enable()
			}
		}
	}

	var sps [2]uintptr
	for i, name := range []string{"A", "B"} {
		top, err := c.NewStack(64)
		if err != nil {
			t.Fatalf("NewStack: %v", err)
		}
		sps[i] = c.InitStack(top, thread(name))
	}
	cur := 0
	c.SetHandler(IRQSysTick, func() {
		sps[cur] = c.SaveRegisters(sps[cur])
		cur = (cur + 1) % len(sps)
		sps[cur] = c.RestoreRegisters(sps[cur])
	})
	c.EnableIRQ(IRQSysTick)

	c.Disable()
	sps[0] = c.RestoreRegisters(sps[0])
	c.Enable()

	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(ctx) }()

	var got []string
	for len(got) < 6 {
		select {
		case s := <-out:
			got = append(got, s)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %v", got)
		}
	}
	if s := strings.Join(got, ""); s != "ABABAB" {
		t.Fatalf("trace = %q, want %q", s, "ABABAB")
	}

	cancel()
	if err := <-runErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want %v", err, context.Canceled)
	}
}

func TestReturningContextHalts(t *testing.T) {
	c := newCore(0, 0)
	top, err := c.NewStack(32)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}
	sp := c.InitStack(top, func() {})
	c.Disable()
	c.RestoreRegisters(sp)
	c.Enable()

	err = c.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned") {
		t.Fatalf("Run() = %v, want context returned error", err)
	}
}

func TestHaltIsSticky(t *testing.T) {
	c := newCore(0, 0)
	stopped := false
	c.onHalt = func() { stopped = true }
	first := errors.New("first")
	c.Halt(first)
	c.Halt(errors.New("second"))
	if !stopped {
		t.Fatal("onHalt not called")
	}
	if err := c.err(); err != first {
		t.Fatalf("err() = %v, want %v", err, first)
	}
}

// On a cooperative scheduler the timer goroutine only runs when the core
// yields; a line it pends there must be taken at the same boundary.
func TestBoundaryYieldLetsTimersPend(t *testing.T) {
	c := newCore(0, 0)
	ran := 0
	c.SetHandler(IRQSysTick, func() { ran++ })
	c.EnableIRQ(IRQSysTick)

	yields := 0
	c.yield = func() {
		yields++
		if yields == 1 {
			c.Pend(IRQSysTick)
		}
	}
	c.Disable()
	c.Enable()
	if yields != 1 || ran != 1 {
		t.Fatalf("yields=%d ran=%d, want 1 and 1", yields, ran)
	}

	// Every boundary yields, even with nothing pending.
	c.Disable()
	c.Enable()
	if yields != 2 || ran != 1 {
		t.Fatalf("yields=%d ran=%d, want 2 and 1", yields, ran)
	}
}
