package hal

import (
	"errors"
	"sync"
	"time"
)

var ErrLoadRange = errors.New("timer: load value out of range")

// countdownTimer models a periodic down-counter clocked from the system
// clock. Each time it reaches zero it sets its timeout flag and pends its
// interrupt line, then reloads.
type countdownTimer struct {
	irq     IRQ
	ic      Interrupts
	clockHz uint32
	maxLoad uint32
	manual  bool

	mu      sync.Mutex
	load    uint32
	running bool
	flag    bool
	stop    chan struct{}
	fired   uint64
}

func newCountdownTimer(irq IRQ, ic Interrupts, clockHz uint32, bits uint) *countdownTimer {
	max := uint32(1<<bits - 1)
	if bits >= 32 {
		max = ^uint32(0)
	}
	return &countdownTimer{irq: irq, ic: ic, clockHz: clockHz, maxLoad: max}
}

func (t *countdownTimer) IRQ() IRQ        { return t.irq }
func (t *countdownTimer) MaxLoad() uint32 { return t.maxLoad }

func (t *countdownTimer) SetLoad(cycles uint32) error {
	if cycles == 0 || cycles > t.maxLoad {
		return ErrLoadRange
	}
	t.mu.Lock()
	t.load = cycles
	restart := t.running
	t.mu.Unlock()
	if restart {
		t.Stop()
		t.Start()
	}
	return nil
}

func (t *countdownTimer) Load() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load
}

// Period is the wall time between timeouts at the current load.
func (t *countdownTimer) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period()
}

func (t *countdownTimer) period() time.Duration {
	if t.clockHz == 0 {
		return 0
	}
	return time.Duration(uint64(t.load) * uint64(time.Second) / uint64(t.clockHz))
}

func (t *countdownTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.load == 0 {
		return
	}
	t.running = true
	if t.manual {
		return
	}
	t.stop = make(chan struct{})
	go t.run(t.period(), t.stop)
}

func (t *countdownTimer) run(d time.Duration, stop <-chan struct{}) {
	if d <= 0 {
		d = time.Millisecond
	}
	tk := time.NewTicker(d)
	defer tk.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			t.timeout()
		}
	}
}

func (t *countdownTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *countdownTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *countdownTimer) ClearInterrupt() {
	t.mu.Lock()
	t.flag = false
	t.mu.Unlock()
}

// Fire forces one timeout on a running timer, as if the counter had just
// reached zero.
func (t *countdownTimer) Fire() {
	t.mu.Lock()
	running := t.running
	t.mu.Unlock()
	if running {
		t.timeout()
	}
}

func (t *countdownTimer) timeout() {
	t.mu.Lock()
	t.flag = true
	t.fired++
	t.mu.Unlock()
	t.ic.Pend(t.irq)
}
