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

// ErrSingleGeometry is returned when a single-geometry engine is asked to
// run a second geometry.
var ErrSingleGeometry = errors.New("engine runs a single geometry")

// singleKey pins an engine to the first geometry it simulates successfully.
type singleKey struct {
	key device.Key
}

// check rejects a key other than the bound one.
func (s *singleKey) check(kind Kind, key device.Key) error {
	if s.key != "" && s.key != key {
		return errors.Wrapf(ErrSingleGeometry, "%s bound to %s, got %s", kind, s.key, key)
	}
	return nil
}

func (s *singleKey) bind(key device.Key) {
	s.key = key
}

// Key is the geometry the engine is bound to, empty before Simulate.
func (s *singleKey) Key() device.Key {
	return s.key
}

// TransientSettings describes the sinusoidal stimulus.
type TransientSettings struct {
	StopTime float64
	Step     float64
	Freq     float64
	CMInput  float64
	Swing    float64 // input amplitude
}

// Transient drives one sized amplifier with a sine around the common-mode
// input and measures the large-signal gain.
type Transient struct {
	*BaseEngine
	singleKey
	Amp      Amplifier
	Stimulus TransientSettings
}

func NewTransient(ckt *circuit.Circuit, amp Amplifier, stim TransientSettings) *Transient {
	return &Transient{
		BaseEngine: NewBaseEngine(KindTransient, ckt),
		Amp:        amp,
		Stimulus:   stim,
	}
}

func (t *Transient) Simulate(ctx context.Context, geom device.Geometry) error {
	if err := t.check(t.kind, geom.Key()); err != nil {
		return err
	}
	err := t.simulate(ctx, netlist.TransientParams{
		AmplifierParams: t.Amp.Params(geom),
		StopTime:        t.Stimulus.StopTime,
		Step:            t.Stimulus.Step,
		Freq:            t.Stimulus.Freq,
		CMInput:         t.Stimulus.CMInput,
		Swing:           t.Stimulus.Swing,
	})
	if err != nil {
		return err
	}
	t.bind(geom.Key())
	return nil
}

func (t *Transient) Gather(key device.Key) error {
	cols, rec, err := t.load(key)
	if err != nil {
		return err
	}

	in, err := util.Summarize(cols[table.Gate])
	if err != nil {
		return err
	}
	out, err := util.Summarize(cols[table.Drain])
	if err != nil {
		return err
	}
	if in.Swing() == 0 {
		return errors.Wrapf(device.ErrNonPhysical, "%s %s: input has no swing", t.kind, key)
	}
	gain := out.Swing() / in.Swing()

	err = setScalars(rec, map[string]float64{
		CMInput:     t.Stimulus.CMInput,
		Swing:       t.Stimulus.Swing,
		InputSwing:  in.Swing(),
		OutputSwing: out.Swing(),
		InputCM:     in.Mean,
		OutputCM:    out.Mean,
		Gain:        gain,
	})
	if err != nil {
		return err
	}

	glog.V(1).Infof("%s %s: in %s pp, out %s pp, gain %.2f", t.kind, key,
		util.FormatValueFactor(in.Swing(), "V"), util.FormatValueFactor(out.Swing(), "V"), gain)
	t.gathered(key)
	return nil
}
