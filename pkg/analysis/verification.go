package analysis

import (
	"context"
	"math"

	"github.com/golang/glog"

	"github.com/edp1096/gmid-sizer/pkg/circuit"
	"github.com/edp1096/gmid-sizer/pkg/device"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
	"github.com/edp1096/gmid-sizer/pkg/table"
	"github.com/edp1096/gmid-sizer/pkg/util"
)

// Amplifier holds the bias and load of the common-source stage shared by
// the verification, transient and frequency circuits.
type Amplifier struct {
	BiasCurrent     float64
	WidthMirror     float64
	LengthMirror    float64
	LoadCapacitance float64
	Vdd             float64
}

func (a Amplifier) Params(geom device.Geometry) netlist.AmplifierParams {
	return netlist.AmplifierParams{
		L:               geom.Length,
		W:               geom.Width,
		BiasCurrent:     a.BiasCurrent,
		WidthMirror:     a.WidthMirror,
		LengthMirror:    a.LengthMirror,
		LoadCapacitance: a.LoadCapacitance,
		Vdd:             a.Vdd,
	}
}

// Verification sweeps the gate of each sized amplifier to check its DC
// transfer and gain around the common-mode input.
type Verification struct {
	*BaseEngine
	Amp     Amplifier
	CMInput float64
	Swing   float64
}

func NewVerification(ckt *circuit.Circuit, amp Amplifier, cmInput, swing float64) *Verification {
	return &Verification{
		BaseEngine: NewBaseEngine(KindVerification, ckt),
		Amp:        amp,
		CMInput:    cmInput,
		Swing:      swing,
	}
}

func (v *Verification) Simulate(ctx context.Context, geom device.Geometry) error {
	return v.simulate(ctx, netlist.VerificationParams{AmplifierParams: v.Amp.Params(geom)})
}

func (v *Verification) Gather(key device.Key) error {
	cols, rec, err := v.load(key)
	if err != nil {
		return err
	}
	vg, vd, gain := cols[table.Gate], cols[table.Drain], cols[table.Gain]

	peak := 0
	for i := range gain {
		if math.Abs(gain[i]) > math.Abs(gain[peak]) {
			peak = i
		}
	}

	vdAt, err := v.lookup(rec, key, CMInputClamped, v.CMInput, vg, vd)
	if err != nil {
		return err
	}
	gx, gy := finite(vg, gain)
	gainAt, err := util.YOfX(v.CMInput, gx, gy)
	if err != nil {
		return err
	}

	err = setScalars(rec, map[string]float64{
		CMInput:     v.CMInput,
		Swing:       v.Swing,
		MaxGain:     gain[peak],
		VgAtMaxGain: vg[peak],
		VdAtCM:      vdAt,
		GainAtCM:    gainAt,
	})
	if err != nil {
		return err
	}

	glog.V(1).Infof("%s %s: peak gain %.2f at Vg = %s, gain at cm %.2f", v.kind, key,
		gain[peak], util.FormatValueFactor(vg[peak], "V"), gainAt)
	v.gathered(key)
	return nil
}
