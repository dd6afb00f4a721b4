package app

import (
	"fmt"
	"image/color"
	"time"

	"rtk/hal"
	"rtk/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	colorBG     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	colorGrid   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	colorText   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorThread = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	colorProbe  = color.RGBA{R: 240, G: 200, B: 60, A: 255}
)

const (
	scopeHeader  = 12
	scopeLabelW  = 56
	scopeMaxRowH = 24
)

// scope is a logic-analyzer view: one lane per thread, fed by the periodic
// sampler, and one per debug pin, fed by the pin probes when the platform
// records them.
type scope struct {
	d      *fbDisplay
	font   tinyfont.Fonter
	probes []hal.Probe
}

func newScope(d *fbDisplay, h hal.HAL) *scope {
	s := &scope{d: d, font: &proggy.TinySZ8pt7b}
	if p, ok := h.(hal.Prober); ok {
		s.probes = p.Probes()
	}
	return s
}

type scopeState struct {
	threads []kernel.ThreadInfo
	current int
	ticks   uint64
	msTime  int64
	sliceMs int
	samples []Sample
}

func (s *scope) render(st scopeState) {
	w, h := s.d.Size()
	_ = s.d.FillRectangle(0, 0, w, h, colorBG)

	header := fmt.Sprintf("ms=%d ticks=%d slice=%dms", st.msTime, st.ticks, st.sliceMs)
	if st.current >= 0 && st.current < len(st.threads) {
		header += " run=" + st.threads[st.current].Name
	}
	tinyfont.WriteLine(s.d, s.font, 2, 9, header, colorText)

	lanes := len(st.threads) + len(s.probes)
	if lanes == 0 {
		return
	}
	rowH := (int(h) - scopeHeader) / lanes
	if rowH > scopeMaxRowH {
		rowH = scopeMaxRowH
	}
	if rowH < 4 {
		return
	}
	plotW := int(w) - scopeLabelW
	if plotW <= 0 {
		return
	}

	samples := st.samples
	if len(samples) > plotW {
		samples = samples[len(samples)-plotW:]
	}

	y := scopeHeader
	for id, t := range st.threads {
		s.lane(y, rowH, t.Name, colorThread, len(samples), func(i int) bool {
			return samples[i].Thread == id
		})
		y += rowH
	}

	if len(samples) == 0 {
		return
	}
	// Probe lanes share the sample window, one column per millisecond.
	end := time.Duration(0)
	for _, p := range s.probes {
		if e := p.Edges(); len(e) > 0 && e[len(e)-1].At > end {
			end = e[len(e)-1].At
		}
	}
	start := end - time.Duration(len(samples))*time.Millisecond
	for _, p := range s.probes {
		edges := p.Edges()
		idx := 0
		level := false
		s.lane(y, rowH, p.Name(), colorProbe, len(samples), func(i int) bool {
			at := start + time.Duration(i+1)*time.Millisecond
			for idx < len(edges) && edges[idx].At <= at {
				level = edges[idx].Level
				idx++
			}
			return level
		})
		y += rowH
	}
}

// lane draws one labelled digital trace. high(i) is evaluated for columns in
// increasing order.
func (s *scope) lane(y, rowH int, name string, c color.RGBA, n int, high func(i int) bool) {
	w, _ := s.d.Size()
	tinyfont.WriteLine(s.d, s.font, 2, int16(y+rowH/2+4), fitText(name, 8), colorText)
	_ = s.d.FillRectangle(scopeLabelW, int16(y+rowH-1), w-scopeLabelW, 1, colorGrid)

	top := y + 2
	bottom := y + rowH - 3
	prev := false
	for i := 0; i < n; i++ {
		x := int16(scopeLabelW + i)
		cur := high(i)
		py := bottom
		if cur {
			py = top
		}
		if i > 0 && cur != prev {
			_ = s.d.FillRectangle(x, int16(top), 1, int16(bottom-top+1), c)
		} else {
			s.d.SetPixel(x, int16(py), c)
		}
		prev = cur
	}
}

func fitText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
