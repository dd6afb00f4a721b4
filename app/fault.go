package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"rtk/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// installFaultHandler reports a kernel fault on the log and paints it over
// the whole screen.
func (s *System) installFaultHandler() {
	s.k.SetFaultHandler(func(info kernel.FaultInfo) {
		l := s.log
		l.WriteLineString(fmt.Sprintf("rtk fault: %s thread=%q where=%q value=%v", info.Kind, info.Thread, info.Where, info.Value))
		for _, line := range strings.Split(string(info.Stack), "\n") {
			if line != "" {
				l.WriteLineString(line)
			}
		}

		s.drawMu.Lock()
		defer s.drawMu.Unlock()
		if s.screen == nil {
			return
		}
		d := s.screen
		w, h := d.Size()
		_ = d.FillRectangle(0, 0, w, h, color.RGBA{R: 255, G: 255, B: 255, A: 255})

		font := &proggy.TinySZ8pt7b
		const lineH, offset = 10, 8
		_, outbox := tinyfont.LineWidth(font, "0")
		if outbox == 0 {
			return
		}
		cols := int(w) / int(outbox)

		who := info.Thread
		if who == "" {
			who = info.Where
		}
		lines := []string{
			"rtk fault:",
			fmt.Sprintf("kind: %s", info.Kind),
			fmt.Sprintf("in: %s", who),
			fmt.Sprintf("value: %v", info.Value),
		}
		if len(info.Stack) > 0 {
			lines = append(lines, "stack:")
			for _, line := range strings.Split(string(info.Stack), "\n") {
				if line != "" {
					lines = append(lines, line)
				}
			}
		} else {
			lines = append(lines, "stack: unavailable")
		}

		fg := color.RGBA{A: 255}
		y := 0
		for _, line := range lines {
			for len(line) > 0 {
				if y+lineH > int(h) {
					_ = d.Display()
					return
				}
				chunk, rest := takeRunes(line, cols)
				tinyfont.WriteLine(d, font, 0, int16(y+offset), chunk, fg)
				y += lineH
				line = strings.TrimLeft(rest, " ")
			}
		}
		_ = d.Display()
	})
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
