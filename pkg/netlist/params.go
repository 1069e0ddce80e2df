package netlist

import (
	"github.com/pkg/errors"
)

// ErrConfiguration marks a fatal configuration problem: an unresolved
// template placeholder or a missing required parameter.
var ErrConfiguration = errors.New("configuration error")

// Placeholder names recognized by the netlist templates.
const (
	PLength          = "length"
	PWidth           = "width"
	PBiasCurrent     = "bias_current"
	PWidthMirror     = "width_mirror"
	PLengthMirror    = "length_mirror"
	PLoadCapacitance = "load_capacitance"
	PVdd             = "vdd"
	PStopTime        = "stop_time"
	PStep            = "step"
	PFreq            = "freq"
	PCMInput         = "cm_input"
	PSwing           = "swing"
	PDataFilename    = "data_filename"
)

// Params is an immutable parameter record for one circuit kind. Values
// exposes exactly the placeholders that kind's template may reference.
type Params interface {
	Length() float64
	Values() map[string]any
	Validate() error
}

func required(name string, v float64) error {
	if v <= 0 {
		return errors.Wrapf(ErrConfiguration, "parameter %s must be positive, got %g", name, v)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// CharacterizationParams drives the single-device sweep.
type CharacterizationParams struct {
	L float64 // channel length
	W float64 // base width shared by all lengths
}

func (p CharacterizationParams) Length() float64 { return p.L }

func (p CharacterizationParams) Values() map[string]any {
	return map[string]any{PLength: p.L, PWidth: p.W}
}

func (p CharacterizationParams) Validate() error {
	return firstError(required(PLength, p.L), required(PWidth, p.W))
}

// AmplifierParams is the common-source stage with an active mirror load.
type AmplifierParams struct {
	L, W            float64
	BiasCurrent     float64
	WidthMirror     float64
	LengthMirror    float64
	LoadCapacitance float64
	Vdd             float64
}

func (p AmplifierParams) Length() float64 { return p.L }

func (p AmplifierParams) Values() map[string]any {
	return map[string]any{
		PLength:          p.L,
		PWidth:           p.W,
		PBiasCurrent:     p.BiasCurrent,
		PWidthMirror:     p.WidthMirror,
		PLengthMirror:    p.LengthMirror,
		PLoadCapacitance: p.LoadCapacitance,
		PVdd:             p.Vdd,
	}
}

func (p AmplifierParams) Validate() error {
	return firstError(
		required(PLength, p.L),
		required(PWidth, p.W),
		required(PBiasCurrent, p.BiasCurrent),
		required(PWidthMirror, p.WidthMirror),
		required(PLengthMirror, p.LengthMirror),
		required(PLoadCapacitance, p.LoadCapacitance),
		required(PVdd, p.Vdd),
	)
}

// VerificationParams is the DC transfer sweep of the amplifier.
type VerificationParams struct {
	AmplifierParams
}

// TransientParams drives a sinusoidal input around the common-mode point.
type TransientParams struct {
	AmplifierParams
	StopTime float64
	Step     float64
	Freq     float64
	CMInput  float64
	Swing    float64
}

func (p TransientParams) Values() map[string]any {
	v := p.AmplifierParams.Values()
	v[PStopTime] = p.StopTime
	v[PStep] = p.Step
	v[PFreq] = p.Freq
	v[PCMInput] = p.CMInput
	v[PSwing] = p.Swing
	return v
}

func (p TransientParams) Validate() error {
	return firstError(
		p.AmplifierParams.Validate(),
		required(PStopTime, p.StopTime),
		required(PStep, p.Step),
		required(PFreq, p.Freq),
		required(PCMInput, p.CMInput),
		required(PSwing, p.Swing),
	)
}

// FrequencyParams drives an AC sweep biased at the common-mode input.
type FrequencyParams struct {
	AmplifierParams
	CMInput float64
}

func (p FrequencyParams) Values() map[string]any {
	v := p.AmplifierParams.Values()
	v[PCMInput] = p.CMInput
	return v
}

func (p FrequencyParams) Validate() error {
	return firstError(p.AmplifierParams.Validate(), required(PCMInput, p.CMInput))
}

// MirrorParams drives the current mirror output sweep.
type MirrorParams struct {
	L, W        float64
	BiasCurrent float64
	Vdd         float64
}

func (p MirrorParams) Length() float64 { return p.L }

func (p MirrorParams) Values() map[string]any {
	return map[string]any{
		PLength:      p.L,
		PWidth:       p.W,
		PBiasCurrent: p.BiasCurrent,
		PVdd:         p.Vdd,
	}
}

func (p MirrorParams) Validate() error {
	return firstError(
		required(PLength, p.L),
		required(PWidth, p.W),
		required(PBiasCurrent, p.BiasCurrent),
		required(PVdd, p.Vdd),
	)
}
