package hal

import (
	"errors"
	"fmt"
)

const (
	// SRAMBase is the address the stack arena is mapped at.
	SRAMBase uintptr = 0x20000000

	// FrameWords is the size of a saved context: eight words stacked by the
	// exception entry sequence plus the eight callee-saved registers.
	FrameWords = 16
	FrameBytes = FrameWords * 4

	// DefaultArenaWords is 16 KiB of stack space.
	DefaultArenaWords = 4096

	xpsrThumb       = 0x01000000
	excReturnThread = 0xFFFFFFFD
)

var ErrStackArena = errors.New("stack arena exhausted")

// StackFault reports a frame push or pop that would leave a stack region.
type StackFault struct {
	SP     uintptr
	Bottom uintptr
	Top    uintptr
	Push   bool
}

func (e *StackFault) Error() string {
	op := "underflow"
	if e.Push {
		op = "overflow"
	}
	return fmt.Sprintf("stack %s: sp=%#x region=[%#x,%#x)", op, e.SP, e.Bottom, e.Top)
}

// Registers is the callee-saved register set (R4-R11).
type Registers [8]uint32

// exceptionFrame is what the exception entry sequence stacks, lowest address first.
type exceptionFrame struct {
	R0, R1, R2, R3, R12, LR, PC, PSR uint32
}

type stackRegion struct {
	bottom uintptr
	top    uintptr
}

// stackArena carves fixed-size stack regions downward from the top of a
// word-addressed memory block.
type stackArena struct {
	mem     []uint32
	next    uintptr
	regions []stackRegion
}

func newStackArena(words int) stackArena {
	if words <= 0 {
		words = DefaultArenaWords
	}
	return stackArena{
		mem:  make([]uint32, words),
		next: SRAMBase + uintptr(words)*4,
	}
}

func (a *stackArena) alloc(words int) (uintptr, error) {
	if words < FrameWords {
		return 0, fmt.Errorf("stack of %d words is smaller than one frame", words)
	}
	// Keep regions 8-byte aligned.
	words += words % 2
	size := uintptr(words) * 4
	if a.next-SRAMBase < size {
		return 0, ErrStackArena
	}
	top := a.next
	a.next -= size
	a.regions = append(a.regions, stackRegion{bottom: a.next, top: top})
	return top, nil
}

// region finds the region sp points into. Adjacent regions share a
// boundary, so a push looks at (bottom, top] and a pop at [bottom, top).
func (a *stackArena) region(sp uintptr, push bool) (stackRegion, bool) {
	for _, r := range a.regions {
		if push && sp > r.bottom && sp <= r.top {
			return r, true
		}
		if !push && sp >= r.bottom && sp < r.top {
			return r, true
		}
	}
	return stackRegion{}, false
}

func (a *stackArena) word(addr uintptr) *uint32 {
	return &a.mem[(addr-SRAMBase)/4]
}

func (a *stackArena) push(sp uintptr, regs Registers, ef exceptionFrame) uintptr {
	r, ok := a.region(sp, true)
	if !ok || sp-FrameBytes < r.bottom {
		panic(&StackFault{SP: sp, Bottom: r.bottom, Top: r.top, Push: true})
	}
	sp -= FrameBytes
	p := sp
	for _, v := range regs {
		*a.word(p) = v
		p += 4
	}
	for _, v := range [8]uint32{ef.R0, ef.R1, ef.R2, ef.R3, ef.R12, ef.LR, ef.PC, ef.PSR} {
		*a.word(p) = v
		p += 4
	}
	return sp
}

func (a *stackArena) pop(sp uintptr) (Registers, exceptionFrame, uintptr) {
	r, ok := a.region(sp, false)
	if !ok || sp+FrameBytes > r.top {
		panic(&StackFault{SP: sp, Bottom: r.bottom, Top: r.top})
	}
	var regs Registers
	p := sp
	for i := range regs {
		regs[i] = *a.word(p)
		p += 4
	}
	var w [8]uint32
	for i := range w {
		w[i] = *a.word(p)
		p += 4
	}
	ef := exceptionFrame{R0: w[0], R1: w[1], R2: w[2], R3: w[3], R12: w[4], LR: w[5], PC: w[6], PSR: w[7]}
	return regs, ef, p
}

// NewStack reserves a stack region of the given size in words.
func (c *core) NewStack(words int) (uintptr, error) {
	return c.stacks.alloc(words)
}

// InitStack registers entry as a new context and lays down the frame that
// starts it on first restore.
func (c *core) InitStack(top uintptr, entry func()) uintptr {
	id := uint32(len(c.threads))
	c.threads = append(c.threads, &hwThread{entry: entry, baton: make(chan struct{}, 1)})
	return c.stacks.push(top, Registers{}, exceptionFrame{
		LR:  excReturnThread,
		PC:  id,
		PSR: xpsrThumb,
	})
}

// SaveRegisters pushes the live context. The PC slot records which context
// was interrupted.
func (c *core) SaveRegisters(sp uintptr) uintptr {
	return c.stacks.push(sp, c.regs, exceptionFrame{
		LR:  excReturnThread,
		PC:  uint32(c.live.Load()),
		PSR: xpsrThumb,
	})
}

// RestoreRegisters pops the context at sp and makes it live. The switch to
// its goroutine happens when the running handler chain returns.
func (c *core) RestoreRegisters(sp uintptr) uintptr {
	regs, ef, next := c.stacks.pop(sp)
	c.regs = regs
	c.live.Store(int32(ef.PC))
	return next
}
