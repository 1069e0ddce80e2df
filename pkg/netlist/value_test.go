package netlist

import (
	"math"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1", 1},
		{"120m", 120e-3},
		{"0.647u", 0.647e-6},
		{"200n", 200e-9},
		{"1p", 1e-12},
		{"1meg", 1e6},
		{"1MEG", 1e6},
		{"10k", 10e3},
		{"1e-12", 1e-12},
		{"-2.5e3", -2500},
		{"5uA", 5e-6},
		{"1.2V", 1.2},
		{" 3f ", 3e-15},
	}
	for _, c := range cases {
		got, err := ParseValue(c.in)
		require.NoError(t, err, c.in)
		assert.InDelta(t, c.want, got, math.Abs(c.want)*1e-12+1e-30, c.in)
	}

	for _, bad := range []string{"", "abc", "1..2", "u5"} {
		_, err := ParseValue(bad)
		assert.Error(t, err, bad)
	}
}

func TestValueFromTOML(t *testing.T) {
	var cfg struct {
		Width   Value   `toml:"width"`
		Vdd     Value   `toml:"vdd"`
		Steps   Value   `toml:"steps"`
		Lengths []Value `toml:"lengths"`
	}
	_, err := toml.Decode(`
width = "0.647u"
vdd = 1.2
steps = 3
lengths = ["200n", 3e-7]
`, &cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.647e-6, cfg.Width.Float(), 1e-18)
	assert.Equal(t, 1.2, cfg.Vdd.Float())
	assert.Equal(t, 3.0, cfg.Steps.Float())
	assert.InDeltaSlice(t, []float64{200e-9, 300e-9}, Floats(cfg.Lengths), 1e-18)
}
