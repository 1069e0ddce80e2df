package analysis

import (
	"context"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/pkg/circuit"
	"github.com/edp1096/gmid-sizer/pkg/device"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
	"github.com/edp1096/gmid-sizer/pkg/table"
	"github.com/edp1096/gmid-sizer/pkg/util"
)

// Gain rises smaller than this (dB) are treated as simulator noise.
const monotonicTolerance = 1e-6

// Frequency runs an AC sweep of one sized amplifier and finds its unity
// gain frequency and phase margin.
type Frequency struct {
	*BaseEngine
	singleKey
	Amp     Amplifier
	CMInput float64

	// RequireMonotonic rejects gain curves that rise anywhere, since the
	// 0 dB crossing would then be ambiguous.
	RequireMonotonic bool
}

func NewFrequency(ckt *circuit.Circuit, amp Amplifier, cmInput float64) *Frequency {
	return &Frequency{
		BaseEngine:       NewBaseEngine(KindFrequency, ckt),
		Amp:              amp,
		CMInput:          cmInput,
		RequireMonotonic: true,
	}
}

func (f *Frequency) Simulate(ctx context.Context, geom device.Geometry) error {
	if err := f.check(f.kind, geom.Key()); err != nil {
		return err
	}
	err := f.simulate(ctx, netlist.FrequencyParams{
		AmplifierParams: f.Amp.Params(geom),
		CMInput:         f.CMInput,
	})
	if err != nil {
		return err
	}
	f.bind(geom.Key())
	return nil
}

func (f *Frequency) Gather(key device.Key) error {
	cols, rec, err := f.load(key)
	if err != nil {
		return err
	}
	freq, gain, phase := cols[table.Freq], cols[table.Gain], cols[table.Phase]

	cf, cg := crossing(freq, gain)
	if f.RequireMonotonic && !util.NonIncreasing(cg, monotonicTolerance) {
		return errors.Wrapf(ErrNotMonotonic, "%s %s below %s", f.kind, key, util.FormatFrequency(cf[len(cf)-1]))
	}

	fu, err := f.lookup(rec, key, UnityClamped, 0, cg, cf)
	if err != nil {
		return err
	}
	px, py := finite(freq, phase)
	phaseAt, err := util.YOfX(fu, px, py)
	if err != nil {
		return errors.Wrapf(err, "%s %s: phase at fu", f.kind, key)
	}
	pm := 180 + phaseAt - phase[0]

	err = setScalars(rec, map[string]float64{
		CMInput:     f.CMInput,
		UnityGain:   fu,
		PhaseAtFu:   phaseAt,
		DCGain:      gain[0],
		PhaseMargin: pm,
	})
	if err != nil {
		return err
	}

	glog.V(1).Infof("%s %s: A0 = %.1f dB, fu = %s, PM = %s", f.kind, key,
		gain[0], util.FormatFrequency(fu), util.FormatPhase(pm))
	f.gathered(key)
	return nil
}

// crossing cuts the sweep after the first sample at or below 0 dB. Gain
// beyond the unity-gain crossing does not affect fu.
func crossing(freq, gain []float64) ([]float64, []float64) {
	n := len(gain)
	for i, g := range gain {
		if g <= 0 {
			n = i + 1
			break
		}
	}
	n = max(n, min(2, len(gain)))
	return freq[:n], gain[:n]
}
