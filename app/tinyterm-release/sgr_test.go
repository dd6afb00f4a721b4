package tinyterm

import (
	"image/color"
	"testing"
)

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		c    Color
		want color.RGBA
	}{
		{ColorBlack, color.RGBA{0, 0, 0, 255}},
		{ColorWhite, color.RGBA{229, 229, 229, 255}},
		{15, color.RGBA{255, 255, 255, 255}},
		{16, color.RGBA{0, 0, 0, 255}},
		{196, color.RGBA{255, 0, 0, 255}},
		{231, color.RGBA{255, 255, 255, 255}},
		{232, color.RGBA{8, 8, 8, 255}},
		{255, color.RGBA{238, 238, 238, 255}},
	}
	for _, tt := range tests {
		if got := tt.c.RGBA(); got != tt.want {
			t.Fatalf("Color(%d).RGBA() = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestSGRAttrsReset(t *testing.T) {
	var a sgrAttrs
	a.attrs = SGRBold
	a.setFG(ColorRed)
	a.setBG(ColorBlue)
	a.reset()
	if a.attrs != 0 || a.fgcol != ColorWhite.RGBA() || a.bgcol != ColorBlack.RGBA() {
		t.Fatalf("reset() = %+v, want white on black", a)
	}
}
