// Package config loads the design parameters of a sizing run from TOML.
// Numeric values may be written as plain numbers or in SPICE notation,
// e.g. width = "0.647u".
package config

import (
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/internal/consts"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
)

type Value = netlist.Value

type Char struct {
	Width   Value   `toml:"width"`
	Lengths []Value `toml:"lengths"`
}

type Specs struct {
	Vdd                Value `toml:"vdd"`
	UnityGainFrequency Value `toml:"unity_gain_frequency"`
	LoadCapacitance    Value `toml:"load_capacitance"`
	VStar              Value `toml:"vstar"`
	BiasCurrentTweak   Value `toml:"bias_current_tweak"`
}

type Verify struct {
	ActiveLoadWidth  Value   `toml:"active_load_width"`
	ActiveLoadLength Value   `toml:"active_load_length"`
	CMInputSpan      []Value `toml:"cm_input_span"` // x range of the gain vs gate plot
	CMInput          Value   `toml:"cm_input"`
	HalfSwing        Value   `toml:"half_swing"`
	InputFrequency   Value   `toml:"input_frequency"`
	DesignPair       int     `toml:"design_pair"` // index into the sized pairs, shortest length first
}

type Transient struct {
	StopTime Value `toml:"stop_time"`
	Step     Value `toml:"step"`
}

// Mirror configures the optional current mirror stage. Zero values fall
// back to the characterization lengths, the derived bias current and Vdd.
type Mirror struct {
	Enabled     bool    `toml:"enabled"`
	Width       Value   `toml:"width"`
	Lengths     []Value `toml:"lengths"`
	BiasCurrent Value   `toml:"bias_current"`
	Vdd         Value   `toml:"vdd"`
}

type Simulator struct {
	Command            string   `toml:"command"`
	Args               []string `toml:"args"`
	WorkDir            string   `toml:"workdir"`
	TemplateDir        string   `toml:"template_dir"`
	Strict             bool     `toml:"strict"`
	PerGeometryNetlist bool     `toml:"per_geometry_netlist"`
}

type Output struct {
	Plot     string `toml:"plot"`   // file name without extension
	Format   string `toml:"format"` // pdf or html
	Database string `toml:"database"`
}

type Config struct {
	Char      Char      `toml:"char"`
	Specs     Specs     `toml:"specs"`
	Verify    Verify    `toml:"verify"`
	Transient Transient `toml:"transient"`
	Mirror    Mirror    `toml:"mirror"`
	Simulator Simulator `toml:"simulator"`
	Output    Output    `toml:"output"`
}

// Default returns the reference design: a 0.647 um wide device at 200 nm
// and 300 nm sized for a 10 MHz unity gain into 1 pF at V* = 120 mV.
func Default() *Config {
	return &Config{
		Char: Char{
			Width:   0.647e-6,
			Lengths: []Value{200e-9, 300e-9},
		},
		Specs: Specs{
			Vdd:                1.2,
			UnityGainFrequency: 1e7,
			LoadCapacitance:    1e-12,
			VStar:              120e-3,
			BiasCurrentTweak:   1,
		},
		Verify: Verify{
			ActiveLoadWidth:  5e-6,
			ActiveLoadLength: 500e-9,
			CMInputSpan:      []Value{0.44, 0.46},
			CMInput:          0.447,
			HalfSwing:        0.0021,
			InputFrequency:   1,
			DesignPair:       1,
		},
		Transient: Transient{
			StopTime: 2,
			Step:     1e-3,
		},
		Mirror: Mirror{
			Enabled: true,
			Width:   5e-6,
		},
		Simulator: Simulator{
			Command: consts.DefaultSimulator,
			Args:    []string{consts.BatchFlag},
			WorkDir: ".",
		},
		Output: Output{
			Plot:     consts.DefaultPlotFile,
			Format:   "pdf",
			Database: "results.sqlite",
		},
	}
}

// Load decodes path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(netlist.ErrConfiguration, "%s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Wrapf(netlist.ErrConfiguration, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

func positive(name string, v Value) error {
	if v <= 0 {
		return errors.Wrapf(netlist.ErrConfiguration, "%s must be positive, got %g", name, v.Float())
	}
	return nil
}

func (c *Config) Validate() error {
	checks := []struct {
		name string
		v    Value
	}{
		{"char.width", c.Char.Width},
		{"specs.vdd", c.Specs.Vdd},
		{"specs.unity_gain_frequency", c.Specs.UnityGainFrequency},
		{"specs.load_capacitance", c.Specs.LoadCapacitance},
		{"specs.vstar", c.Specs.VStar},
		{"specs.bias_current_tweak", c.Specs.BiasCurrentTweak},
		{"verify.active_load_width", c.Verify.ActiveLoadWidth},
		{"verify.active_load_length", c.Verify.ActiveLoadLength},
		{"verify.cm_input", c.Verify.CMInput},
		{"verify.half_swing", c.Verify.HalfSwing},
		{"verify.input_frequency", c.Verify.InputFrequency},
		{"transient.stop_time", c.Transient.StopTime},
		{"transient.step", c.Transient.Step},
	}
	for _, chk := range checks {
		if err := positive(chk.name, chk.v); err != nil {
			return err
		}
	}

	if len(c.Char.Lengths) == 0 {
		return errors.Wrap(netlist.ErrConfiguration, "char.lengths is empty")
	}
	for _, l := range c.Char.Lengths {
		if err := positive("char.lengths", l); err != nil {
			return err
		}
	}
	if c.Verify.DesignPair < 0 || c.Verify.DesignPair >= len(c.Char.Lengths) {
		return errors.Wrapf(netlist.ErrConfiguration, "verify.design_pair %d out of range [0, %d)",
			c.Verify.DesignPair, len(c.Char.Lengths))
	}
	if span := c.Verify.CMInputSpan; len(span) != 2 || span[0] >= span[1] {
		return errors.Wrapf(netlist.ErrConfiguration, "verify.cm_input_span must be [low, high], got %v", span)
	}
	if c.Transient.Step > c.Transient.StopTime {
		return errors.Wrap(netlist.ErrConfiguration, "transient.step exceeds transient.stop_time")
	}
	if c.Mirror.Enabled {
		if err := positive("mirror.width", c.Mirror.Width); err != nil {
			return err
		}
	}
	switch c.Output.Format {
	case "pdf", "html":
	default:
		return errors.Wrapf(netlist.ErrConfiguration, "output.format %q is not pdf or html", c.Output.Format)
	}
	if c.Simulator.Command == "" {
		return errors.Wrap(netlist.ErrConfiguration, "simulator.command is empty")
	}
	return nil
}

// Transconductance is the gm needed for the unity gain frequency into the
// load: 2*pi*fu*CL.
func (c *Config) Transconductance() float64 {
	return 2 * math.Pi * c.Specs.UnityGainFrequency.Float() * c.Specs.LoadCapacitance.Float()
}

// BiasCurrent is gm*V*/2, scaled by the tweak factor.
func (c *Config) BiasCurrent() float64 {
	return c.Transconductance() * c.Specs.VStar.Float() / 2 * c.Specs.BiasCurrentTweak.Float()
}

func (c *Config) Lengths() []float64 {
	return netlist.Floats(c.Char.Lengths)
}

func (c *Config) CMInputSpan() [2]float64 {
	return [2]float64{c.Verify.CMInputSpan[0].Float(), c.Verify.CMInputSpan[1].Float()}
}

func (c *Config) MirrorLengths() []float64 {
	if len(c.Mirror.Lengths) > 0 {
		return netlist.Floats(c.Mirror.Lengths)
	}
	return c.Lengths()
}

func (c *Config) MirrorBiasCurrent() float64 {
	if c.Mirror.BiasCurrent > 0 {
		return c.Mirror.BiasCurrent.Float()
	}
	return c.BiasCurrent()
}

func (c *Config) MirrorVdd() float64 {
	if c.Mirror.Vdd > 0 {
		return c.Mirror.Vdd.Float()
	}
	return c.Specs.Vdd.Float()
}
