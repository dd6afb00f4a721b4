package app

import (
	"fmt"
	"io"
	"strings"
)

// RenderTrace writes an ASCII timing diagram of samples: one row per thread
// ('#' while it held the CPU) and one for PB1, one column per sample. Only the
// newest samples that fit in width columns are drawn.
func RenderTrace(w io.Writer, samples []Sample, names []string, width int) error {
	label := len("PB1")
	for _, n := range names {
		if len(n) > label {
			label = len(n)
		}
	}
	cols := width - label - 3
	if cols < 1 {
		cols = 1
	}
	if len(samples) > cols {
		samples = samples[len(samples)-cols:]
	}
	if len(samples) == 0 {
		_, err := fmt.Fprintln(w, "(no samples)")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s | ms %d..%d\n", label, "", samples[0].Ms, samples[len(samples)-1].Ms)
	for id, name := range names {
		fmt.Fprintf(&b, "%*s | ", label, name)
		for _, s := range samples {
			if s.Thread == id {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%*s | ", label, "PB1")
	for _, s := range samples {
		if s.PB1 {
			b.WriteByte('^')
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}
