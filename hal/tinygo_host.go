//go:build tinygo && !baremetal

package hal

type tinyGoHostHAL struct {
	board
	logger *tinyGoHostLogger
	gpio   GPIO
	fb     *memFramebuffer
}

// New returns a TinyGo-on-host HAL implementation.
//
// This is used by `tinygo run` targets like linux/wasm where there is no MCU pin mapping.
func New() HAL {
	return &tinyGoHostHAL{
		board:  newBoard(Options{}),
		logger: &tinyGoHostLogger{},
		gpio:   newVirtualGPIO([]GPIOPin{newProbePin("PB0"), newProbePin("PB1")}),
		fb:     newMemFramebuffer(320, 240),
	}
}

func (h *tinyGoHostHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHostHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHostHAL) Display() Display { return tinyGoHostDisplay{fb: h.fb} }

type tinyGoHostDisplay struct {
	fb Framebuffer
}

func (d tinyGoHostDisplay) Framebuffer() Framebuffer { return d.fb }

type tinyGoHostLogger struct{}

func (l *tinyGoHostLogger) WriteLineString(s string) {
	println(s)
}

func (l *tinyGoHostLogger) WriteLineBytes(b []byte) {
	println(string(b))
}
