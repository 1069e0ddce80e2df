package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSine(t *testing.T) {
	const (
		n      = 400
		offset = 0.6
		amp    = 0.02
	)
	trace := make([]float64, n)
	for i := range trace {
		// whole number of periods, so the mean is exactly the offset
		trace[i] = offset + amp*math.Sin(2*math.Pi*float64(i)/float64(n)*4)
	}

	s, err := Summarize(trace)
	require.NoError(t, err)
	assert.InDelta(t, offset, s.Mean, 1e-12)
	assert.InDelta(t, 2*amp, s.Swing(), 1e-9)
	assert.InDelta(t, offset+amp, s.Max, 1e-9)
	assert.InDelta(t, offset-amp, s.Min, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	assert.Error(t, err)
}

func TestNonIncreasing(t *testing.T) {
	assert.True(t, NonIncreasing([]float64{40, 40, 20, -3}, 0))
	assert.False(t, NonIncreasing([]float64{40, 41, 20}, 0))
	assert.True(t, NonIncreasing([]float64{40, 40.0000001, 20}, 1e-6))
	assert.True(t, NonIncreasing(nil, 0))
}

func TestFormatValueFactor(t *testing.T) {
	cases := []struct {
		v    float64
		unit string
		want string
	}{
		{5.5e-6, "A", "5.500 uA"},
		{0.12, "V", "120.000 mV"},
		{1.2, "V", "1.200 V"},
		{2.5e6, "Ohm", "2.500 MOhm"},
		{200e-9, "m", "200.000 nm"},
		{0, "V", "0.000 V"},
		{-3e-12, "F", "-3.000 pF"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatValueFactor(c.v, c.unit))
	}
	assert.Equal(t, " 10.000 MHz", FormatFrequency(1e7))
}
