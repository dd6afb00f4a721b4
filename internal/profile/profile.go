// Package profile measures the timing of periodic firings from the rising
// edges recorded on a debug pin.
package profile

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"rtk/hal"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrTooFewEdges is returned when fewer than two rising edges were recorded.
var ErrTooFewEdges = errors.New("profile: need at least two rising edges")

// Report summarizes the intervals between consecutive rising edges.
type Report struct {
	Nominal   time.Duration
	Intervals int
	Mean      time.Duration
	StdDev    time.Duration
	Min       time.Duration
	Max       time.Duration
	P50       time.Duration
	P99       time.Duration
	// Jitter is the largest deviation of any interval from Nominal, or from
	// Mean when Nominal is zero.
	Jitter time.Duration
}

// RisingEdges returns the times of the low-to-high transitions in edges.
func RisingEdges(edges []hal.Edge) []time.Duration {
	var out []time.Duration
	prev := false
	for i, e := range edges {
		if e.Level && (i == 0 || !prev) {
			out = append(out, e.At)
		}
		prev = e.Level
	}
	return out
}

// Analyze computes a Report from the rising edges in edges. nominal is the
// configured period; pass zero when unknown.
func Analyze(edges []hal.Edge, nominal time.Duration) (Report, error) {
	rises := RisingEdges(edges)
	if len(rises) < 2 {
		return Report{}, ErrTooFewEdges
	}
	x := make([]float64, len(rises)-1)
	for i := 1; i < len(rises); i++ {
		x[i-1] = float64(rises[i] - rises[i-1])
	}

	mean, std := stat.MeanStdDev(x, nil)
	if len(x) == 1 {
		std = 0
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	ref := float64(nominal)
	if nominal == 0 {
		ref = mean
	}
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = v - ref
		if dev[i] < 0 {
			dev[i] = -dev[i]
		}
	}

	return Report{
		Nominal:   nominal,
		Intervals: len(x),
		Mean:      time.Duration(mean),
		StdDev:    time.Duration(std),
		Min:       time.Duration(floats.Min(x)),
		Max:       time.Duration(floats.Max(x)),
		P50:       time.Duration(stat.Quantile(0.5, stat.Empirical, sorted, nil)),
		P99:       time.Duration(stat.Quantile(0.99, stat.Empirical, sorted, nil)),
		Jitter:    time.Duration(floats.Max(dev)),
	}, nil
}

func (r Report) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"intervals %d\nnominal   %v\nmean      %v\nstddev    %v\nmin       %v\nmax       %v\np50       %v\np99       %v\njitter    %v\n",
		r.Intervals, r.Nominal, r.Mean, r.StdDev, r.Min, r.Max, r.P50, r.P99, r.Jitter)
	return int64(n), err
}
