//go:build !tinygo || !baremetal

package hal

import "sync"

// memFramebuffer is an RGB565 framebuffer in memory. Drawing goes to the back
// buffer; Present publishes it, and readers only ever see presented frames.
type memFramebuffer struct {
	width  int
	height int
	back   []byte

	mu     sync.Mutex
	front  []byte
	frames uint64
}

func newMemFramebuffer(width, height int) *memFramebuffer {
	n := width * 2 * height
	return &memFramebuffer{
		width:  width,
		height: height,
		back:   make([]byte, n),
		front:  make([]byte, n),
	}
}

func (f *memFramebuffer) Width() int          { return f.width }
func (f *memFramebuffer) Height() int         { return f.height }
func (f *memFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *memFramebuffer) StrideBytes() int    { return f.width * 2 }
func (f *memFramebuffer) Buffer() []byte      { return f.back }

func (f *memFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := packRGB565(r, g, b)
	for i := 0; i+1 < len(f.back); i += 2 {
		f.back[i] = byte(pixel)
		f.back[i+1] = byte(pixel >> 8)
	}
}

func (f *memFramebuffer) Present() error {
	f.mu.Lock()
	copy(f.front, f.back)
	f.frames++
	f.mu.Unlock()
	return nil
}

// presented copies the last presented frame into dst and returns its number.
// Frame 0 means nothing was presented yet.
func (f *memFramebuffer) presented(dst []byte) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.front)
	return f.frames
}

func packRGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

func unpackRGB565(p uint16) (r, g, b uint8) {
	r = uint8(uint32(p>>11&0x1F) * 255 / 31)
	g = uint8(uint32(p>>5&0x3F) * 255 / 63)
	b = uint8(uint32(p&0x1F) * 255 / 31)
	return r, g, b
}
