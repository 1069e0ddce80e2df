package simtest

import (
	"math"

	"github.com/edp1096/gmid-sizer/pkg/netlist"
)

// CharacterizationDrainVoltage is the fixed Vds of the fabricated sweep.
const CharacterizationDrainVoltage = 0.6

// Characterization sweeps Vgs from just above threshold to 1.2 V in the
// wrdata layout: even columns repeat the sweep variable, odd columns hold
// W, Vgs, Vds, Vth, Id, gm, gds, Cgs, Cgb, Cgd.
func Characterization(p Params) [][]float64 {
	m := NewMosfet(p[netlist.PWidth], p[netlist.PLength])
	vds := CharacterizationDrainVoltage

	var rows [][]float64
	for vgs := m.VTO + 0.02; vgs <= 1.2+1e-9; vgs += 0.01 {
		id, gm, gds, _ := m.Operate(vgs, vds)
		cgs, cgb, cgd := m.Capacitances(vgs, vds)
		rows = append(rows, interleave(vgs, m.W, vgs, vds, m.Threshold(), id, gm, gds, cgs, cgb, cgd))
	}
	return rows
}

// Verification fabricates a smooth inverting transfer curve Vd(Vg) and its
// derivative, switching at 0.45 V.
func Verification(p Params) [][]float64 {
	vdd := p[netlist.PVdd]
	const (
		vm    = 0.45
		slope = 0.01
	)

	var rows [][]float64
	for vg := 0.0; vg <= vdd+1e-9; vg += 0.001 {
		e := math.Exp((vg - vm) / slope)
		vd := vdd / (1 + e)
		gain := -vdd * e / (slope * (1 + e) * (1 + e))
		rows = append(rows, interleave(vg, vg, vd, gain))
	}
	return rows
}

// TransientGain is the small-signal gain of the fabricated transient.
const TransientGain = 20.0

// TransientOutputBias is the output common mode of the fabricated transient.
const TransientOutputBias = 0.6

// Transient fabricates a sine at the input and an amplified, inverted copy
// at the output, over a whole number of periods.
func Transient(p Params) [][]float64 {
	stop, step := p[netlist.PStopTime], p[netlist.PStep]
	cm, swing, freq := p[netlist.PCMInput], p[netlist.PSwing], p[netlist.PFreq]

	n := int(math.Round(stop / step))
	rows := make([][]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) * step
		s := math.Sin(2 * math.Pi * freq * t)
		vg := cm + swing*s
		vd := TransientOutputBias - TransientGain*swing*s
		rows = append(rows, []float64{t, vg, t, vd})
	}
	return rows
}

// Single pole response used by Frequency.
const (
	FrequencyDCGainDB = 40.0
	FrequencyPole     = 1e5
)

// Frequency fabricates a single-pole inverting response from 1 Hz to
// 10 GHz, 20 points per decade: gain in dB and phase in degrees.
func Frequency(_ Params) [][]float64 {
	a0 := math.Pow(10, FrequencyDCGainDB/20)
	var rows [][]float64
	for i := 0; i <= 200; i++ {
		f := math.Pow(10, float64(i)/20)
		r := f / FrequencyPole
		gain := 20 * math.Log10(a0/math.Sqrt(1+r*r))
		phase := 180 - math.Atan(r)*180/math.Pi
		rows = append(rows, []float64{f, gain, f, phase})
	}
	return rows
}

// Mirror sweeps the output of a two-transistor mirror from 0 to Vdd.
func Mirror(p Params) [][]float64 {
	m := NewMosfet(p[netlist.PWidth], p[netlist.PLength])
	ib, vdd := p[netlist.PBiasCurrent], p[netlist.PVdd]
	vgs := m.VTO + math.Sqrt(2*ib/(m.KP*m.W/m.L))

	var rows [][]float64
	for vo := 0.005; vo <= vdd+1e-9; vo += 0.005 {
		id, _, gds, _ := m.Operate(vgs, vo)
		rows = append(rows, interleave(vo, vo, id, gds, vo))
	}
	return rows
}

// Generators returns the generator set keyed by the built-in prefixes.
func Generators() map[string]Generator {
	return map[string]Generator{
		"cktchar":   Characterization,
		"cktver":    Verification,
		"ckttran":   Transient,
		"cktfreq":   Frequency,
		"cktmirror": Mirror,
	}
}

func interleave(scale float64, values ...float64) []float64 {
	row := make([]float64, 0, 2*len(values))
	for _, v := range values {
		row = append(row, scale, v)
	}
	return row
}
