//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type hostHAL struct {
	board
	logger *hostLogger
	probes []*probePin
	gpio   GPIO
	fb     *memFramebuffer
}

// New returns a host HAL implementation with a free-running reference board.
func New() HAL {
	return NewWithOptions(Options{})
}

// NewWithOptions returns a host HAL implementation.
//
// Debug pins PB0 and PB1 are recording probes; see Prober.
func NewWithOptions(opts Options) HAL {
	return newHostHAL(opts, os.Stdout)
}

func newHostHAL(opts Options, w io.Writer) *hostHAL {
	now := opts.Now
	probes := []*probePin{
		newProbePinWithClock("PB0", now),
		newProbePinWithClock("PB1", now),
	}
	pins := make([]GPIOPin, 0, len(probes)+4)
	for _, p := range probes {
		pins = append(pins, p)
	}
	for i := 2; i < 6; i++ {
		pins = append(pins, newVirtualPin(fmt.Sprintf("PB%d", i), GPIOCapInput|GPIOCapOutput|GPIOCapPullUp|GPIOCapPullDown))
	}
	return &hostHAL{
		board:  newBoard(opts),
		logger: &hostLogger{w: w},
		probes: probes,
		gpio:   newVirtualGPIO(pins),
		fb:     newMemFramebuffer(320, 240),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) GPIO() GPIO       { return h.gpio }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }

func (h *hostHAL) Probes() []Probe {
	out := make([]Probe, len(h.probes))
	for i, p := range h.probes {
		out[i] = p
	}
	return out
}

type hostDisplay struct {
	fb *memFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
