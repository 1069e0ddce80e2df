package util

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TraceStats summarizes a sampled waveform.
type TraceStats struct {
	Min, Max, Mean float64
}

// Swing is the peak-to-peak excursion.
func (s TraceStats) Swing() float64 {
	return s.Max - s.Min
}

// Summarize returns min, max and arithmetic mean of a non-empty trace.
func Summarize(trace []float64) (TraceStats, error) {
	if len(trace) == 0 {
		return TraceStats{}, ErrTooFewSamples
	}
	return TraceStats{
		Min:  floats.Min(trace),
		Max:  floats.Max(trace),
		Mean: stat.Mean(trace, nil),
	}, nil
}

// NonIncreasing reports whether no sample exceeds its predecessor by more
// than tol.
func NonIncreasing(xs []float64, tol float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i]-xs[i-1] > tol {
			return false
		}
	}
	return true
}
