package app

import (
	"sync"

	"rtk/hal"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// consoleBacklog bounds the lines queued between two frames.
const consoleBacklog = 64

// consoleLogger forwards every line to the platform logger and queues it for
// the on-screen console. Safe from any goroutine.
type consoleLogger struct {
	base hal.Logger

	mu      sync.Mutex
	pending []string
	dropped int
}

func newConsoleLogger(base hal.Logger) *consoleLogger {
	return &consoleLogger{base: base}
}

func (l *consoleLogger) WriteLineString(s string) {
	if l.base != nil {
		l.base.WriteLineString(s)
	}
	l.mu.Lock()
	if len(l.pending) >= consoleBacklog {
		l.pending = l.pending[1:]
		l.dropped++
	}
	l.pending = append(l.pending, s)
	l.mu.Unlock()
}

func (l *consoleLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}

func (l *consoleLogger) drain() (lines []string, dropped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lines, dropped = l.pending, l.dropped
	l.pending, l.dropped = nil, 0
	return lines, dropped
}

// console is a tinyterm terminal in a window of the framebuffer.
type console struct {
	d   *fbDisplay
	t   *tinyterm.Terminal
	log *consoleLogger
}

func newConsole(d *fbDisplay, log *consoleLogger) *console {
	c := &console{d: d, log: log}
	c.reset()
	return c
}

func (c *console) reset() {
	c.t = tinyterm.NewTerminal(c.d)
	c.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        7,
		UseSoftwareScroll: true,
	})
}

// flush writes queued log lines to the terminal. Call from the frame loop.
func (c *console) flush() {
	lines, dropped := c.log.drain()
	if dropped > 0 {
		c.t.Printf("... %d lines dropped\r\n", dropped)
	}
	for _, s := range lines {
		_, _ = c.t.Write([]byte(s))
		_, _ = c.t.Write([]byte("\r\n"))
	}
}
