package app

import (
	"strings"
	"testing"
)

func TestRenderTrace(t *testing.T) {
	samples := []Sample{
		{Ms: 0, Thread: 0},
		{Ms: 1, Thread: 0, PB1: true},
		{Ms: 2, Thread: 1, PB1: true},
		{Ms: 3, Thread: 1},
		{Ms: 4, Thread: 0},
	}
	var b strings.Builder
	if err := RenderTrace(&b, samples, []string{"ping", "pong"}, 80); err != nil {
		t.Fatalf("RenderTrace: %v", err)
	}
	want := "" +
		"     | ms 0..4\n" +
		"ping | ##..#\n" +
		"pong | ..##.\n" +
		" PB1 | _^^__\n"
	if got := b.String(); got != want {
		t.Fatalf("RenderTrace() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderTraceKeepsNewest(t *testing.T) {
	var samples []Sample
	for i := 0; i < 100; i++ {
		samples = append(samples, Sample{Ms: int64(i), Thread: i % 2})
	}
	var b strings.Builder
	// label "PB1" is 3 wide, plus " | " leaves 4 columns.
	if err := RenderTrace(&b, samples, []string{"a", "b"}, 10); err != nil {
		t.Fatalf("RenderTrace: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), b.String())
	}
	if lines[0] != "    | ms 96..99" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "  a | #.#." || lines[2] != "  b | .#.#" {
		t.Fatalf("lanes = %q, %q", lines[1], lines[2])
	}
}

func TestRenderTraceEmpty(t *testing.T) {
	var b strings.Builder
	if err := RenderTrace(&b, nil, []string{"a"}, 80); err != nil {
		t.Fatalf("RenderTrace: %v", err)
	}
	if got := b.String(); got != "(no samples)\n" {
		t.Fatalf("RenderTrace() = %q", got)
	}
}
